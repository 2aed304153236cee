// Package ifrcgo loads operations and projects from the IFRC GO platform API.
// Both endpoints are paginated through a "next" link and are rate limited.
package ifrcgo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/internal/transport"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

const sourceName = "ifrcgo"

type page struct {
	Count   int              `json:"count"`
	Next    *string          `json:"next"`
	Results []map[string]any `json:"results"`
}

type api struct {
	client  *transport.Client
	baseURL string
}

func newAPI(deps factory.Deps) api {
	return api{
		client: deps.Client(sourceName,
			transport.WithRateLimit(constants.DefaultRateLimit, constants.BurstSize)),
		baseURL: deps.URL(constants.GOURL),
	}
}

// results follows the next links from the first page of path and returns
// every result. Next links are resolved against the configured base URL.
func (a api) results(ctx context.Context, path string) ([]map[string]any, error) {
	next := fmt.Sprintf("%s%s?limit=%d&offset=0", a.baseURL, path, constants.DefaultPageSize)
	seen := make(map[string]bool)

	var out []map[string]any
	for next != "" {
		if seen[next] {
			return nil, errors.NewValidationError("next", next, "pagination loop")
		}
		seen[next] = true

		var p page
		if err := a.client.GetJSON(ctx, next, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Results...)
		logging.FromContext(ctx).Debug().
			Str("path", path).
			Int("results", len(out)).
			Int("count", p.Count).
			Msg("Fetched GO page")

		next = ""
		if p.Next != nil && *p.Next != "" {
			rebased, err := a.rebase(*p.Next)
			if err != nil {
				return nil, err
			}
			next = rebased
		}
	}
	return out, nil
}

func (a api) rebase(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", errors.NewValidationError("next", link, err.Error())
	}
	return a.baseURL + u.RequestURI(), nil
}

// goDate renders a GO timestamp as a date. The zero timestamp GO uses for
// missing dates becomes an empty cell.
func goDate(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "0001-01-01") {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts.Format("2006-01-02")
		}
	}
	return v
}

func formatDates(t *table.Table, columns ...string) {
	for _, c := range columns {
		if t.HasColumn(c) {
			t.Map(c, goDate)
		}
	}
}
