package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dharmasatrya/ecoflyer/internal/emissions"
	"github.com/dharmasatrya/ecoflyer/internal/localtime"
)

const DefaultTIMURL = "https://travelimpactmodel.googleapis.com"

// Cabin classes reported by the emissions API.
const (
	ClassEconomy        = "economy"
	ClassPremiumEconomy = "premiumEconomy"
	ClassBusiness       = "business"
	ClassFirst          = "first"
)

func ValidCabinClass(class string) bool {
	switch class {
	case ClassEconomy, ClassPremiumEconomy, ClassBusiness, ClassFirst:
		return true
	}
	return false
}

type timFlight struct {
	Origin               string         `json:"origin"`
	Destination          string         `json:"destination"`
	OperatingCarrierCode string         `json:"operatingCarrierCode"`
	FlightNumber         int            `json:"flightNumber"`
	DepartureDate        localtime.Date `json:"departureDate"`
}

type timRequest struct {
	Flights []timFlight `json:"flights"`
}

type timResponse struct {
	FlightEmissions []timEmission `json:"flightEmissions"`
}

type timEmission struct {
	Flight               *timFlight       `json:"flight"`
	EmissionsGramsPerPax map[string]int64 `json:"emissionsGramsPerPax"`
}

// TIMClient computes per-flight emissions with one batched call.
type TIMClient struct {
	cfg    ClientConfig
	client *http.Client
	class  string
}

func NewTIMClient(cfg ClientConfig, cabinClass string) *TIMClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTIMURL
	}
	if cabinClass == "" {
		cabinClass = ClassEconomy
	}
	return &TIMClient{
		cfg:    cfg,
		client: cfg.httpClient(),
		class:  cabinClass,
	}
}

func (c *TIMClient) Name() string {
	return TIM
}

// ComputeEmissions sends the whole batch in one request and returns one
// value per query, keyed by the query's ID. A flight the API has no data for
// gets grams 0.
func (c *TIMClient) ComputeEmissions(ctx context.Context, batch []emissions.FlightQuery) ([]emissions.LegEmission, error) {
	if len(batch) == 0 {
		return []emissions.LegEmission{}, nil
	}
	if err := c.cfg.Limiter.Wait(ctx, TIM); err != nil {
		return nil, NewProviderError(TIM, err)
	}

	body := timRequest{Flights: make([]timFlight, len(batch))}
	for i, q := range batch {
		body.Flights[i] = timFlight{
			Origin:               q.Origin,
			Destination:          q.Destination,
			OperatingCarrierCode: q.Carrier,
			FlightNumber:         q.FlightNumber,
			DepartureDate:        q.Date,
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, NewProviderError(TIM, err)
	}

	endpoint := c.cfg.BaseURL + "/v1/flights:computeFlightEmissions?key=" + url.QueryEscape(c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, NewProviderError(TIM, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewProviderError(TIM, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, NewProviderError(TIM, err)
	}

	var out timResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, NewProviderError(TIM, fmt.Errorf("parsing response: %w", err))
	}
	if len(out.FlightEmissions) != len(batch) {
		return nil, NewProviderError(TIM, fmt.Errorf("got %d results for %d flights", len(out.FlightEmissions), len(batch)))
	}

	grams := make([]int64, len(batch))
	for i, fe := range out.FlightEmissions {
		if fe.Flight != nil && !sameFlight(*fe.Flight, body.Flights[i]) {
			return nil, NewProviderError(TIM, fmt.Errorf("result %d is for %s%d %s-%s, asked for %s",
				i, fe.Flight.OperatingCarrierCode, fe.Flight.FlightNumber, fe.Flight.Origin, fe.Flight.Destination, batch[i].ID))
		}
		grams[i] = fe.EmissionsGramsPerPax[c.class]
	}

	values, err := emissions.Zip(batch, grams)
	if err != nil {
		return nil, NewProviderError(TIM, err)
	}
	return values, nil
}

func sameFlight(got, sent timFlight) bool {
	return strings.EqualFold(got.Origin, sent.Origin) &&
		strings.EqualFold(got.Destination, sent.Destination) &&
		strings.EqualFold(got.OperatingCarrierCode, sent.OperatingCarrierCode) &&
		got.FlightNumber == sent.FlightNumber
}
