package dto

// Response is the envelope every endpoint answers with, success or not.
type Response struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Message string         `json:"message,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// OKWithMeta wraps data plus meta in a successful envelope.
func OKWithMeta(data any, meta map[string]any) Response {
	return Response{Success: true, Data: data, Meta: meta}
}

// Fail wraps an error message in a failed envelope.
func Fail(message string) Response {
	return Response{Success: false, Error: message}
}
