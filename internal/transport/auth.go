package transport

import (
	"net/http"
)

// Authenticator attaches a credential to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request, apiKey string)
}

// AuthFunc adapts a function to the Authenticator interface.
type AuthFunc func(req *http.Request, apiKey string)

// Apply calls f.
func (f AuthFunc) Apply(req *http.Request, apiKey string) { f(req, apiKey) }

// NoAuth leaves requests untouched. Public sources (GO, World Bank, INFORM,
// HDRO, CPI, ICRC) use it.
func NoAuth() Authenticator {
	return AuthFunc(func(*http.Request, string) {})
}

// QueryParam sends the key as the named query parameter. An empty key adds
// nothing.
func QueryParam(name string) Authenticator {
	return AuthFunc(func(req *http.Request, apiKey string) {
		if req.URL == nil || apiKey == "" {
			return
		}
		query := req.URL.Query()
		query.Set(name, apiKey)
		req.URL.RawQuery = query.Encode()
	})
}

// DatabankAuth returns the authenticator for the NS Databank, which expects
// ?apiKey=<key>.
func DatabankAuth() Authenticator {
	return QueryParam("apiKey")
}
