package transport

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoAuth(t *testing.T) {
	req := &http.Request{URL: &url.URL{Path: "/api/v2/appeal/"}, Header: make(http.Header)}

	NoAuth().Apply(req, "test-api-key")

	assert.Empty(t, req.Header)
	assert.Empty(t, req.URL.RawQuery)
}

func TestDatabankAuth(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		key    string
		want   string
	}{
		{name: "no existing query", rawURL: "https://data-api.ifrc.org/api/entities/ns", key: "secret", want: "apiKey=secret"},
		{name: "existing query", rawURL: "https://data-api.ifrc.org/api/documents?ns=DAF001", key: "secret", want: "apiKey=secret&ns=DAF001"},
		{name: "empty key", rawURL: "https://data-api.ifrc.org/api/Data?ns=DAF001", key: "", want: "ns=DAF001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.rawURL)
			require.NoError(t, err)
			req := &http.Request{URL: u, Header: make(http.Header)}

			DatabankAuth().Apply(req, tt.key)

			assert.Equal(t, tt.want, req.URL.RawQuery)
		})
	}
}

func TestQueryParamNilURL(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	QueryParam("apiKey").Apply(req, "secret")
	assert.Nil(t, req.URL)
}

func TestAuthFunc(t *testing.T) {
	var got string
	auth := AuthFunc(func(_ *http.Request, key string) { got = key })
	auth.Apply(&http.Request{}, "k")
	assert.Equal(t, "k", got)
}
