// Package providers holds the HTTP adapters for the upstream APIs: flight
// search, per-flight emissions and destination photos.
package providers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dharmasatrya/ecoflyer/internal/ratelimit"
)

// Upstream names, also used as rate limiter keys.
const (
	Tequila  = "tequila"
	TIM      = "tim"
	Unsplash = "unsplash"
)

var ErrNoFlights = errors.New("no flights found")

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

// StatusError is returned when an upstream answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// ClientConfig is shared by every upstream client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Limiter *ratelimit.UpstreamLimiter
}

func (c ClientConfig) httpClient() *http.Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// checkStatus turns a non-200 response into a StatusError carrying the start
// of the body for the logs.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}
