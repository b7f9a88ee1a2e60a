package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dharmasatrya/ecoflyer/internal/models"
)

const (
	DefaultTequilaURL   = "https://api.tequila.kiwi.com"
	DefaultTequilaLimit = 400
)

// Query is one round-trip search. Dates are DD/MM/YYYY; empty range ends
// default to the range start.
type Query struct {
	FlyFrom     string
	FlyTo       string
	DateFrom    string
	DateTo      string
	ReturnFrom  string
	ReturnTo    string
	PriceTo     int
	Currency    string
	ResultLimit int
}

type tequilaResponse struct {
	Currency string                `json:"currency"`
	Data     []models.RawItinerary `json:"data"`
}

type TequilaClient struct {
	cfg    ClientConfig
	client *http.Client
	limit  int
}

func NewTequilaClient(cfg ClientConfig, resultLimit int) *TequilaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTequilaURL
	}
	if resultLimit <= 0 {
		resultLimit = DefaultTequilaLimit
	}
	return &TequilaClient{
		cfg:    cfg,
		client: cfg.httpClient(),
		limit:  resultLimit,
	}
}

func (c *TequilaClient) Name() string {
	return Tequila
}

// Search returns itineraries in the API's quality order. An empty result is
// ErrNoFlights.
func (c *TequilaClient) Search(ctx context.Context, q Query) ([]models.RawItinerary, error) {
	if err := c.cfg.Limiter.Wait(ctx, Tequila); err != nil {
		return nil, NewProviderError(Tequila, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v2/search?"+c.params(q).Encode(), nil)
	if err != nil {
		return nil, NewProviderError(Tequila, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewProviderError(Tequila, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, NewProviderError(Tequila, err)
	}

	var body tequilaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, NewProviderError(Tequila, fmt.Errorf("parsing response: %w", err))
	}
	if len(body.Data) == 0 {
		return nil, NewProviderError(Tequila, ErrNoFlights)
	}
	return body.Data, nil
}

func (c *TequilaClient) params(q Query) url.Values {
	dateTo := q.DateTo
	if dateTo == "" {
		dateTo = q.DateFrom
	}
	returnTo := q.ReturnTo
	if returnTo == "" {
		returnTo = q.ReturnFrom
	}
	curr := q.Currency
	if curr == "" {
		curr = "EUR"
	}
	limit := q.ResultLimit
	if limit <= 0 {
		limit = c.limit
	}

	v := url.Values{}
	v.Set("fly_from", q.FlyFrom)
	v.Set("fly_to", q.FlyTo)
	v.Set("date_from", q.DateFrom)
	v.Set("date_to", dateTo)
	v.Set("return_from", q.ReturnFrom)
	v.Set("return_to", returnTo)
	v.Set("ret_from_diff_city", "false")
	v.Set("curr", curr)
	v.Set("sort", "quality")
	v.Set("limit", strconv.Itoa(limit))
	if q.PriceTo > 0 {
		v.Set("price_to", strconv.Itoa(q.PriceTo))
	}
	return v
}
