package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

const entitiesJSON = `[
	{"KPI_DON_code": "DAF001", "NSO_DON_name": "Afghan Red Crescent Society"},
	{"KPI_DON_code": "DRS001", "NSO_DON_name": "Red Cross of Serbia"},
	{"KPI_DON_code": "DKE001", "NSO_DON_name": "Kenya Red Cross Society"}
]`

func newDatabank(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/entities/ns", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(entitiesJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func embeddedRegistry(t *testing.T) *registry.Cache {
	t.Helper()
	reg, err := registry.EmbeddedLoader()()
	require.NoError(t, err)
	return registry.NewStaticCache(reg)
}

func TestResolve(t *testing.T) {
	var hits atomic.Int32
	srv := newDatabank(t, &hits)
	r := New(NewDatabankFetcher(" secret ", WithBaseURL(srv.URL)), WithRegistry(embeddedRegistry(t)))
	ctx := context.Background()

	t.Run("ids to names", func(t *testing.T) {
		got, err := r.Resolve(ctx, []string{"DAF001", "DRS001"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Afghan Red Crescent Society", "Red Cross of Serbia"}, got)
	})

	t.Run("names to ids", func(t *testing.T) {
		got, err := r.Resolve(ctx, []string{"Kenya Red Cross Society"}, Reverse())
		require.NoError(t, err)
		assert.Equal(t, []string{"DKE001"}, got)
	})

	t.Run("unknown passes through with a warning", func(t *testing.T) {
		logs := logging.NewTestLogger(t)
		ctx := logging.WithLogger(ctx, logs.Logger)
		got, err := r.Resolve(ctx, []string{"DAF001", "DZZ999", ""})
		require.NoError(t, err)
		assert.Equal(t, []string{"Afghan Red Crescent Society", "DZZ999", ""}, got)
		logs.AssertContains(t, "DZZ999")
		logs.AssertContains(t, "Unknown NS IDs")
	})

	t.Run("clean names recovers countries and aliases", func(t *testing.T) {
		got, err := r.Resolve(ctx, []string{"Kenya", "Afghanistan Red Crescent Society", "DRS001"}, CleanNames())
		require.NoError(t, err)
		assert.Equal(t, []string{"Kenya Red Cross Society", "Afghan Red Crescent Society", "Red Cross of Serbia"}, got)
	})

	t.Run("clean names in reverse stops at names", func(t *testing.T) {
		got, err := r.Resolve(ctx, []string{"Serbia"}, Reverse(), CleanNames())
		require.NoError(t, err)
		assert.Equal(t, []string{"DRS001"}, got)
	})

	assert.Equal(t, int32(1), hits.Load(), "table is fetched once")
}

func TestConcurrentFirstUseFetchesOnce(t *testing.T) {
	var hits atomic.Int32
	srv := newDatabank(t, &hits)
	r := New(NewDatabankFetcher("secret", WithBaseURL(srv.URL)))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Resolve(context.Background(), []string{"DKE001"})
			assert.NoError(t, err)
			assert.Equal(t, []string{"Kenya Red Cross Society"}, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchErrorIsNotCached(t *testing.T) {
	var calls int
	r := New(FetcherFunc(func(context.Context) (map[string]string, error) {
		calls++
		if calls == 1 {
			return nil, errors.NewAPIError("databank", http.StatusServiceUnavailable, "down")
		}
		return map[string]string{"DAF001": "Afghan Red Crescent Society"}, nil
	}))

	_, err := r.Resolve(context.Background(), []string{"DAF001"})
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))

	got, err := r.Resolve(context.Background(), []string{"DAF001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Afghan Red Crescent Society"}, got)
	assert.Equal(t, 2, calls)
}

func TestTable(t *testing.T) {
	r := New(FetcherFunc(func(context.Context) (map[string]string, error) {
		return map[string]string{"DAF001": "Afghan Red Crescent Society"}, nil
	}))

	forward, err := r.Table(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"DAF001": "Afghan Red Crescent Society"}, forward)

	reverse, err := r.Table(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Afghan Red Crescent Society": "DAF001"}, reverse)
}

func TestDatabankFetcherErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"bad key"}`, errors.ErrAPIKeyInvalid},
		{"server error", http.StatusBadGateway, ``, errors.ErrSourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewDatabankFetcher("k", WithBaseURL(srv.URL)).FetchTable(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("empty list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		_, err := NewDatabankFetcher("k", WithBaseURL(srv.URL)).FetchTable(context.Background())
		require.Error(t, err)
	})
}

func TestRefreshRefetchesTable(t *testing.T) {
	names := []string{"Kenya Red Cross", "Kenya Red Cross Society"}
	var calls int
	r := New(FetcherFunc(func(context.Context) (map[string]string, error) {
		name := names[calls]
		calls++
		return map[string]string{"DKE001": name}, nil
	}))

	got, err := r.Resolve(context.Background(), []string{"DKE001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kenya Red Cross"}, got)

	got, err = r.Resolve(context.Background(), []string{"DKE001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kenya Red Cross"}, got)
	assert.Equal(t, 1, calls)

	r.Refresh()
	got, err = r.Resolve(context.Background(), []string{"DKE001"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kenya Red Cross Society"}, got)
	assert.Equal(t, 2, calls)
}
