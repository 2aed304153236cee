package resolver

import (
	"context"
	"net/http"
	"strings"

	"github.com/ifrc-nsd/nsdata/internal/transport"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
)

// Fetcher retrieves the full id to name table from an external system.
type Fetcher interface {
	FetchTable(ctx context.Context) (map[string]string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (map[string]string, error)

// FetchTable calls f.
func (f FetcherFunc) FetchTable(ctx context.Context) (map[string]string, error) {
	return f(ctx)
}

// Entity is one row of the Databank entities endpoint.
type Entity struct {
	Code string `json:"KPI_DON_code"`
	Name string `json:"NSO_DON_name"`
}

// DatabankFetcher reads National Society IDs and names from the NS Databank.
type DatabankFetcher struct {
	client  *transport.Client
	baseURL string
	http    *http.Client
}

// FetcherOption configures a DatabankFetcher.
type FetcherOption func(*DatabankFetcher)

// WithBaseURL overrides the Databank base URL.
func WithBaseURL(u string) FetcherOption {
	return func(f *DatabankFetcher) {
		f.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *DatabankFetcher) {
		f.http = hc
	}
}

// NewDatabankFetcher creates a fetcher authenticated with apiKey.
func NewDatabankFetcher(apiKey string, opts ...FetcherOption) *DatabankFetcher {
	f := &DatabankFetcher{baseURL: constants.DatabankURL}
	for _, opt := range opts {
		opt(f)
	}
	f.client = transport.New("databank",
		transport.WithAuth(transport.DatabankAuth(), strings.TrimSpace(apiKey)),
		transport.WithHTTPClient(f.http))
	return f
}

// BaseURL returns the Databank base URL.
func (f *DatabankFetcher) BaseURL() string {
	return f.baseURL
}

// FetchTable implements Fetcher.
func (f *DatabankFetcher) FetchTable(ctx context.Context) (map[string]string, error) {
	var entities []Entity
	if err := f.client.GetJSON(ctx, f.baseURL+"/api/entities/ns", &entities); err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, errors.NewAPIError("databank", http.StatusOK, "empty National Society list")
	}
	table := make(map[string]string, len(entities))
	for _, e := range entities {
		if e.Code == "" {
			continue
		}
		table[e.Code] = e.Name
	}
	return table, nil
}
