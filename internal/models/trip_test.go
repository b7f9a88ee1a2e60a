package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegCarrierPrefersOperating(t *testing.T) {
	leg := Leg{Airline: "FR", FlightNo: "3071"}
	assert.Equal(t, "FR", leg.Carrier())
	n, err := leg.FlightNumber()
	require.NoError(t, err)
	assert.Equal(t, 3071, n)

	leg.OperatingCarrier = "RK"
	leg.OperatingFlightNo = "12"
	assert.Equal(t, "RK", leg.Carrier())
	n, err = leg.FlightNumber()
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestLegFlightNumberNotNumeric(t *testing.T) {
	leg := Leg{FlyFrom: "LIS", FlyTo: "OPO", FlightNo: "TP12"}
	_, err := leg.FlightNumber()
	assert.Error(t, err)
}

func TestResultSetJSONKeepsOrder(t *testing.T) {
	rs := ResultSet{
		{City: "Porto", Options: []Option{
			{CityTo: "Porto", TripEmissions: 90, Outbound: []Leg{{FlyFrom: "LIS", FlyTo: "OPO"}}, Return: []Leg{{FlyFrom: "OPO", FlyTo: "LIS", Direction: Return}}},
			{CityTo: "Porto", TripEmissions: 95},
		}},
		{City: "Barcelona", Options: []Option{{CityTo: "Barcelona", TripEmissions: 120}}},
	}

	data, err := json.Marshal(rs)
	require.NoError(t, err)
	out := string(data)

	assert.Less(t, strings.Index(out, `"Porto"`), strings.Index(out, `"Barcelona"`))
	assert.Less(t, strings.Index(out, `"option_1"`), strings.Index(out, `"option_2"`))

	var decoded map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	porto := decoded["Porto"]["option_1"]
	assert.Equal(t, float64(2), porto["total_legs"])
	assert.Equal(t, float64(1), porto["out_legs"])
	assert.Equal(t, float64(1), porto["return_legs"])
	assert.Equal(t, float64(90), porto["trip_emissions"])

	flights, ok := porto["flights"].([]any)
	require.True(t, ok)
	require.Len(t, flights, 2)
	ret := flights[1].(map[string]any)["step_1"].(map[string]any)
	assert.Equal(t, "OPO", ret["flyFrom"])
	assert.Equal(t, float64(1), ret["return"])
}

func TestStepsJSONKeepsNumericOrder(t *testing.T) {
	legs := make(steps, 11)
	for i := range legs {
		legs[i] = Leg{FlyFrom: StepKey(i)}
	}

	data, err := json.Marshal(legs)
	require.NoError(t, err)
	out := string(data)

	assert.Less(t, strings.Index(out, `"step_9"`), strings.Index(out, `"step_10"`))
	assert.Less(t, strings.Index(out, `"step_10"`), strings.Index(out, `"step_11"`))
	assert.True(t, strings.HasPrefix(out, `{"step_1":`))
}

func TestEmptyResultSetJSON(t *testing.T) {
	data, err := json.Marshal(ResultSet{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestFindAndCities(t *testing.T) {
	rs := ResultSet{{City: "Madrid"}, {City: "Rome"}}
	assert.Equal(t, []string{"Madrid", "Rome"}, rs.Cities())

	d, ok := rs.Find("Rome")
	assert.True(t, ok)
	assert.Equal(t, "Rome", d.City)

	_, ok = rs.Find("Oslo")
	assert.False(t, ok)
}
