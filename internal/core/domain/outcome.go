package domain

// ProviderOutcome is the per-provider result of a scrape-all run. A failing
// provider never aborts its siblings; it just yields Success=false here.
type ProviderOutcome struct {
	Provider string       `json:"provider"`
	Success  bool         `json:"success"`
	Records  []RateRecord `json:"rates,omitempty"`
	Error    string       `json:"error,omitempty"`
}
