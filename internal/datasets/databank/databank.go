// Package databank loads the datasets served by the IFRC NS Databank API:
// FDRS indicators, National Society documents and contacts. Every request
// carries the caller's API key as the apiKey query parameter.
package databank

import (
	"strings"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/internal/transport"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
)

const sourceName = "databank"

// endpoint holds what every Databank loader needs to reach the API.
type endpoint struct {
	client  *transport.Client
	baseURL string
	apiKey  string
}

func newEndpoint(args dataset.Args, deps factory.Deps) endpoint {
	key := strings.TrimSpace(args.Get(dataset.ArgAPIKey))
	return endpoint{
		client:  deps.Client(sourceName, transport.WithAuth(transport.DatabankAuth(), key)),
		baseURL: deps.URL(constants.DatabankURL),
		apiKey:  key,
	}
}

func (e endpoint) url(path string) string {
	return e.baseURL + path
}
