package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const DefaultUnsplashURL = "https://api.unsplash.com"

// Portrait crop used by the result cards.
const photoCrop = "&w=400&h=600&fit=crop&crop=top,bottom,left,right"

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Raw string `json:"raw"`
		} `json:"urls"`
	} `json:"results"`
}

type UnsplashClient struct {
	cfg    ClientConfig
	client *http.Client
}

func NewUnsplashClient(cfg ClientConfig) *UnsplashClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultUnsplashURL
	}
	return &UnsplashClient{
		cfg:    cfg,
		client: cfg.httpClient(),
	}
}

func (c *UnsplashClient) Name() string {
	return Unsplash
}

// Photo returns a cropped portrait photo URL for city, or "" when the search
// has no results.
func (c *UnsplashClient) Photo(ctx context.Context, city string) (string, error) {
	if err := c.cfg.Limiter.Wait(ctx, Unsplash); err != nil {
		return "", NewProviderError(Unsplash, err)
	}

	params := url.Values{}
	params.Set("query", city)
	params.Set("orientation", "portrait")
	params.Set("per_page", "1")
	params.Set("order_by", "relevant")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return "", NewProviderError(Unsplash, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept-Version", "v1")
	req.Header.Set("Authorization", "Client-ID "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", NewProviderError(Unsplash, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", NewProviderError(Unsplash, err)
	}

	var body unsplashResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", NewProviderError(Unsplash, fmt.Errorf("parsing response: %w", err))
	}
	if len(body.Results) == 0 || body.Results[0].URLs.Raw == "" {
		return "", nil
	}
	return body.Results[0].URLs.Raw + photoCrop, nil
}
