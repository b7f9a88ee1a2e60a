package aggregator

import (
	"errors"
	"fmt"
)

type Stage string

const (
	StageInput     Stage = "input"
	StageAirports  Stage = "airports"
	StageNoFlights Stage = "no_flights"
	StageFlights   Stage = "flights"
	StageNormalize Stage = "normalize"
	StageEmissions Stage = "emissions"
	StageFold      Stage = "fold"
)

var (
	ErrNoOriginAirports      = errors.New("no airports near the origin")
	ErrNoDestinationAirports = errors.New("no airports in the requested distance band")
)

var stageMessages = map[Stage]string{
	StageInput:     "The input is invalid",
	StageAirports:  "Error fetching airports",
	StageNoFlights: "No flights found for given search parameters",
	StageFlights:   "Error fetching route options",
	StageNormalize: "Error fetching route options",
	StageEmissions: "Error fetching emissions for route options",
	StageFold:      "Error interpreting emissions data",
}

const internalMessage = "Internal server error"

// StageError records which pipeline stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Message is the short text shown to users for this failure.
func (e *StageError) Message() string {
	if msg, ok := stageMessages[e.Stage]; ok {
		return msg
	}
	return internalMessage
}

// UserMessage returns the user-facing message for any error returned by
// Search.
func UserMessage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Message()
	}
	return internalMessage
}
