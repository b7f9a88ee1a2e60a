package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/ecoflyer/internal/emissions"
	"github.com/dharmasatrya/ecoflyer/internal/localtime"
	"github.com/dharmasatrya/ecoflyer/internal/ratelimit"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func testConfig(ts *httptest.Server) ClientConfig {
	return ClientConfig{
		BaseURL: ts.URL,
		APIKey:  "secret",
		Limiter: ratelimit.NewUpstreamLimiter(ratelimit.Limit{}, nil),
	}
}

// --- Tequila ---

const tequilaPayload = `{"currency":"EUR","data":[{
	"id":"a","flyFrom":"LIS","cityFrom":"Lisbon","flyTo":"OPO","cityTo":"Porto",
	"local_departure":"2024-04-03T06:35:00.000Z","price":61,"deep_link":"https://book.example/a",
	"route":[{"flyFrom":"LIS","cityFrom":"Lisbon","flyTo":"OPO","cityTo":"Porto",
		"local_departure":"2024-04-03T06:35:00.000Z","airline":"TP","flight_no":1944,
		"operating_carrier":"","operating_flight_no":"","return":0}]
}]}`

func TestTequilaSearchSendsQuery(t *testing.T) {
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))

		q := r.URL.Query()
		assert.Equal(t, "LIS,OPO", q.Get("fly_from"))
		assert.Equal(t, "MAD", q.Get("fly_to"))
		assert.Equal(t, "03/04/2024", q.Get("date_from"))
		assert.Equal(t, "03/04/2024", q.Get("date_to"))
		assert.Equal(t, "10/04/2024", q.Get("return_from"))
		assert.Equal(t, "12/04/2024", q.Get("return_to"))
		assert.Equal(t, "false", q.Get("ret_from_diff_city"))
		assert.Equal(t, "EUR", q.Get("curr"))
		assert.Equal(t, "quality", q.Get("sort"))
		assert.Equal(t, "400", q.Get("limit"))
		assert.Equal(t, "150", q.Get("price_to"))

		fmt.Fprint(w, tequilaPayload)
	})

	c := NewTequilaClient(testConfig(ts), 0)
	got, err := c.Search(context.Background(), Query{
		FlyFrom:    "LIS,OPO",
		FlyTo:      "MAD",
		DateFrom:   "03/04/2024",
		ReturnFrom: "10/04/2024",
		ReturnTo:   "12/04/2024",
		PriceTo:    150,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Porto", *got[0].CityTo)
	assert.Equal(t, "1944", string(*got[0].Route[0].FlightNo))
}

func TestTequilaSearchOmitsPriceWhenUnset(t *testing.T) {
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["price_to"]
		assert.False(t, ok)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		fmt.Fprint(w, tequilaPayload)
	})

	_, err := NewTequilaClient(testConfig(ts), 25).Search(context.Background(), Query{DateFrom: "03/04/2024"})
	require.NoError(t, err)
}

func TestTequilaSearchErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantNoHit bool
	}{
		{"empty data", http.StatusOK, `{"data":[]}`, true},
		{"bad status", http.StatusForbidden, `{"error":"bad key"}`, false},
		{"bad json", http.StatusOK, `{"data":`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := NewTequilaClient(testConfig(ts), 0).Search(context.Background(), Query{})
			require.Error(t, err)
			assert.Equal(t, tt.wantNoHit, errors.Is(err, ErrNoFlights))

			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, Tequila, pe.Provider)
		})
	}
}

func TestTequilaStatusErrorCarriesCode(t *testing.T) {
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := NewTequilaClient(testConfig(ts), 0).Search(context.Background(), Query{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
}

// --- TIM ---

func timBatch() []emissions.FlightQuery {
	return []emissions.FlightQuery{
		{ID: "d0.o0.o0", Origin: "LIS", Destination: "OPO", Carrier: "TP", FlightNumber: 1944, Date: localtime.Date{Year: 2024, Month: 4, Day: 3}},
		{ID: "d0.o0.r0", Origin: "OPO", Destination: "LIS", Carrier: "NI", FlightNumber: 1951, Date: localtime.Date{Year: 2024, Month: 4, Day: 10}},
	}
}

func TestTIMComputeEmissions(t *testing.T) {
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/flights:computeFlightEmissions", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		raw, _ := io.ReadAll(r.Body)
		var req map[string][]map[string]any
		if !assert.NoError(t, json.Unmarshal(raw, &req)) || !assert.Len(t, req["flights"], 2) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		first := req["flights"][0]
		assert.Equal(t, "LIS", first["origin"])
		assert.Equal(t, "TP", first["operatingCarrierCode"])
		assert.Equal(t, float64(1944), first["flightNumber"])
		assert.Equal(t, map[string]any{"year": float64(2024), "month": float64(4), "day": float64(3)}, first["departureDate"])

		fmt.Fprint(w, `{"flightEmissions":[
			{"flight":{"origin":"LIS","destination":"OPO","operatingCarrierCode":"TP","flightNumber":1944,"departureDate":{"year":2024,"month":4,"day":3}},
			 "emissionsGramsPerPax":{"first":0,"business":91000,"premiumEconomy":0,"economy":45500}},
			{"flight":{"origin":"OPO","destination":"LIS","operatingCarrierCode":"NI","flightNumber":1951,"departureDate":{"year":2024,"month":4,"day":10}}}
		]}`)
	})

	got, err := NewTIMClient(testConfig(ts), "").ComputeEmissions(context.Background(), timBatch())
	require.NoError(t, err)
	assert.Equal(t, []emissions.LegEmission{
		{ID: "d0.o0.o0", Grams: 45500},
		{ID: "d0.o0.r0", Grams: 0},
	}, got)
}

func TestTIMSelectsCabinClass(t *testing.T) {
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"flightEmissions":[
			{"emissionsGramsPerPax":{"business":91000,"economy":45500}},
			{"emissionsGramsPerPax":{"business":80000,"economy":40000}}
		]}`)
	})

	got, err := NewTIMClient(testConfig(ts), ClassBusiness).ComputeEmissions(context.Background(), timBatch())
	require.NoError(t, err)
	assert.Equal(t, int64(91000), got[0].Grams)
	assert.Equal(t, int64(80000), got[1].Grams)
}

func TestTIMErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad status", http.StatusBadRequest, `{"error":{"message":"invalid flight"}}`},
		{"short response", http.StatusOK, `{"flightEmissions":[{"emissionsGramsPerPax":{"economy":1}}]}`},
		{"wrong flight echoed", http.StatusOK, `{"flightEmissions":[
			{"flight":{"origin":"MAD","destination":"OPO","operatingCarrierCode":"TP","flightNumber":1944}},
			{"emissionsGramsPerPax":{"economy":1}}]}`},
		{"bad json", http.StatusOK, `[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := NewTIMClient(testConfig(ts), "").ComputeEmissions(context.Background(), timBatch())
			var pe *ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, TIM, pe.Provider)
		})
	}
}

func TestTIMEmptyBatchSkipsCall(t *testing.T) {
	called := false
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	got, err := NewTIMClient(testConfig(ts), "").ComputeEmissions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, called)
}

func TestValidCabinClass(t *testing.T) {
	assert.True(t, ValidCabinClass("economy"))
	assert.True(t, ValidCabinClass("premiumEconomy"))
	assert.False(t, ValidCabinClass("Economy"))
	assert.False(t, ValidCabinClass(""))
}

// --- Unsplash ---

func TestUnsplashPhoto(t *testing.T) {
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "v1", r.Header.Get("Accept-Version"))
		assert.Equal(t, "Client-ID secret", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "Porto", q.Get("query"))
		assert.Equal(t, "portrait", q.Get("orientation"))
		assert.Equal(t, "1", q.Get("per_page"))

		fmt.Fprint(w, `{"results":[{"urls":{"raw":"https://images.example/photo-1?ixid=abc"}}]}`)
	})

	got, err := NewUnsplashClient(testConfig(ts)).Photo(context.Background(), "Porto")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/photo-1?ixid=abc&w=400&h=600&fit=crop&crop=top,bottom,left,right", got)
}

func TestUnsplashNoResults(t *testing.T) {
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	})

	got, err := NewUnsplashClient(testConfig(ts)).Photo(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnsplashBadStatus(t *testing.T) {
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := NewUnsplashClient(testConfig(ts)).Photo(context.Background(), "Porto")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, Unsplash, pe.Provider)
}

func TestClientsHonourCancelledContext(t *testing.T) {
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tequilaPayload)
	})
	cfg := testConfig(ts)
	cfg.Limiter = ratelimit.NewUpstreamLimiter(ratelimit.Limit{RequestsPerSecond: 1, Burst: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTequilaClient(cfg, 0).Search(ctx, Query{})
	assert.Error(t, err)
}
