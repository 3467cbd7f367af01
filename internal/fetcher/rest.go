package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RESTBackend queries a MyMemory-compatible translation HTTP API: a GET
// endpoint taking `q` and `langpair` query parameters and returning
// `{"responseData": {"translatedText": ...}, "responseStatus": ...}`.
type RESTBackend struct {
	name     string
	endpoint string
	langPair string
	client   *http.Client
}

var _ Backend = (*RESTBackend)(nil)

// restResponse is the subset of the MyMemory response shape we read.
type restResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus int `json:"responseStatus"`
}

// NewRESTBackend creates a [RESTBackend]. name labels the backend in logs and
// cache provenance; langPair is the API's language pair string, e.g.
// "en|tcy".
func NewRESTBackend(name, endpoint, langPair string, timeout time.Duration) (*RESTBackend, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("fetcher: rest endpoint must not be empty")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("fetcher: rest endpoint: %w", err)
	}
	if name == "" {
		name = "rest"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RESTBackend{
		name:     name,
		endpoint: endpoint,
		langPair: langPair,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Name implements [Backend].
func (b *RESTBackend) Name() string { return b.name }

// Translate implements [Backend].
func (b *RESTBackend) Translate(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	if b.langPair != "" {
		q.Set("langpair", b.langPair)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("fetcher: %s request: %w", b.name, err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetcher: %s request: %w", b.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetcher: %s returned status %d", b.name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("fetcher: %s read body: %w", b.name, err)
	}

	var parsed restResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("fetcher: %s decode body: %w", b.name, err)
	}
	if parsed.ResponseStatus != 0 && parsed.ResponseStatus != http.StatusOK {
		return "", fmt.Errorf("fetcher: %s api status %d", b.name, parsed.ResponseStatus)
	}
	return parsed.ResponseData.TranslatedText, nil
}
