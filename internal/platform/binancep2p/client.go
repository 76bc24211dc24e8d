// Package binancep2p wraps the Binance P2P listing-search endpoint shared by
// the scraping provider and the live-quote service.
package binancep2p

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vzla-dev/bolivar_rates_api/internal/apperrors"
)

// DefaultAPIURL is the public P2P advertisement search endpoint.
const DefaultAPIURL = "https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search"

// successCode is the payload-level code Binance returns on success; anything
// else is an upstream failure even on HTTP 200.
const successCode = "000000"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Offer is one P2P listing as returned by the search endpoint. Prices come
// back as strings.
type Offer struct {
	Adv struct {
		Price         string `json:"price"`
		SurplusAmount string `json:"surplusAmount"`
	} `json:"adv"`
	Advertiser struct {
		NickName        string  `json:"nickName"`
		MonthFinishRate float64 `json:"monthFinishRate"`
		UserType        string  `json:"userType"`
	} `json:"advertiser"`
}

type searchRequest struct {
	AdditionalKycVerifyFilter int      `json:"additionalKycVerifyFilter"`
	Asset                     string   `json:"asset"`
	Fiat                      string   `json:"fiat"`
	TradeType                 string   `json:"tradeType"`
	FilterType                string   `json:"filterType"`
	Classifies                []string `json:"classifies"`
	Countries                 []string `json:"countries"`
	PayTypes                  []string `json:"payTypes"`
	Periods                   []string `json:"periods"`
	ProMerchantAds            bool     `json:"proMerchantAds"`
	PublisherType             string   `json:"publisherType"`
	Followed                  bool     `json:"followed"`
	Page                      int      `json:"page"`
	Rows                      int      `json:"rows"`
}

type searchResponse struct {
	Code    string  `json:"code"`
	Data    []Offer `json:"data"`
	Total   int     `json:"total"`
	Success bool    `json:"success"`
}

// Client queries USDT/VES listings from the P2P marketplace.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a Client with a fixed per-request timeout.
func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchOffers fetches the ranked USDT/VES listings for one trade direction
// ("BUY" or "SELL") and filters them down to merchant-grade counterparties.
// Unverified listings are dropped before any averaging happens.
func (c *Client) SearchOffers(ctx context.Context, tradeType string) ([]Offer, error) {
	body := searchRequest{
		Asset:          "USDT",
		Fiat:           "VES",
		TradeType:      tradeType,
		FilterType:     "tradeable",
		Classifies:     []string{"profession", "fiat_trade"},
		Countries:      []string{},
		PayTypes:       []string{},
		Periods:        []string{},
		ProMerchantAds: false,
		PublisherType:  "merchant",
		Page:           1,
		Rows:           10,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: building P2P request: %v", apperrors.ErrUpstreamFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s offers: %v", apperrors.ErrUpstreamFetch, tradeType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: P2P search returned status %d", apperrors.ErrUpstreamFetch, resp.StatusCode)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("%w: decoding P2P response: %v", apperrors.ErrParse, err)
	}
	if !search.Success || search.Code != successCode {
		return nil, fmt.Errorf("%w: P2P API returned error code %s", apperrors.ErrUpstreamFetch, search.Code)
	}

	offers := make([]Offer, 0, len(search.Data))
	for _, offer := range search.Data {
		if offer.Advertiser.UserType == "merchant" {
			offers = append(offers, offer)
		}
	}
	return offers, nil
}

// AverageTop parses the prices of the first k offers (fewer if not enough)
// and returns their arithmetic mean along with the parsed sample. An
// unparseable or non-positive price fails the whole call with
// apperrors.ErrParse; an empty offer set is the caller's concern.
func AverageTop(offers []Offer, k int) (decimal.Decimal, []decimal.Decimal, error) {
	if len(offers) == 0 {
		return decimal.Decimal{}, nil, fmt.Errorf("%w: no offers to average", apperrors.ErrParse)
	}
	if len(offers) > k {
		offers = offers[:k]
	}

	prices := make([]decimal.Decimal, 0, len(offers))
	sum := decimal.Zero
	for _, offer := range offers {
		price, err := decimal.NewFromString(offer.Adv.Price)
		if err != nil {
			return decimal.Decimal{}, nil, fmt.Errorf("%w: unparseable offer price %q", apperrors.ErrParse, offer.Adv.Price)
		}
		if price.LessThanOrEqual(decimal.Zero) {
			return decimal.Decimal{}, nil, fmt.Errorf("%w: non-positive offer price %q", apperrors.ErrParse, offer.Adv.Price)
		}
		prices = append(prices, price)
		sum = sum.Add(price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(prices)))), prices, nil
}
