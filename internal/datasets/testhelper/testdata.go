// Package testhelper provides fixtures for dataset loader tests: recorded
// responses under testdata/, an httptest server that replays them, and the
// embedded catalog and registry.
package testhelper

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// UpdateTestdata is the global flag for updating testdata files.
var UpdateTestdata = flag.Bool("update", false, "update testdata files")

// LoadTestdata loads a testdata file from the caller's testdata directory.
func LoadTestdata(t testing.TB, filename string) []byte {
	t.Helper()

	testdataPath := filepath.Join("testdata", filename)
	data, err := os.ReadFile(testdataPath) //nolint:gosec // Test file paths are controlled
	if err != nil {
		t.Fatalf("Failed to load testdata file %s: %v", testdataPath, err)
	}
	return data
}

// SaveTestdata saves data to a testdata file if the -update flag is set.
func SaveTestdata(t testing.TB, filename string, data []byte) {
	t.Helper()

	if !*UpdateTestdata {
		return
	}
	if err := os.MkdirAll("testdata", constants.DirPermissions); err != nil {
		t.Fatalf("Failed to create testdata directory: %v", err)
	}
	testdataPath := filepath.Join("testdata", filename)
	if err := os.WriteFile(testdataPath, data, constants.FilePermissions); err != nil {
		t.Fatalf("Failed to save testdata file %s: %v", testdataPath, err)
	}
	t.Logf("Updated testdata file: %s", testdataPath)
}

// CompareJSONWithTestdata compares v, marshalled as indented JSON, with a
// golden file. With -update the golden file is rewritten.
func CompareJSONWithTestdata(t testing.TB, filename string, v any) {
	t.Helper()

	actual, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal actual data for comparison: %v", err)
	}
	if *UpdateTestdata {
		SaveTestdata(t, filename, actual)
		return
	}
	expected := LoadTestdata(t, filename)
	if strings.TrimSpace(string(actual)) != strings.TrimSpace(string(expected)) {
		t.Errorf("JSON data does not match testdata file %s\nActual:\n%s\nExpected:\n%s",
			filename, actual, expected)
	}
}

// Routes maps a request path to the testdata file served for it. A key with a
// query string matches that exact request URI and wins over a bare path.
type Routes map[string]string

// Server replays testdata files by request URI. Unknown paths get a 404.
// Requests are recorded for assertions.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

// NewServer starts a replay server that is closed when the test ends.
func NewServer(t testing.TB, routes Routes) *Server {
	t.Helper()

	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(context.Background()))
		s.mu.Unlock()

		file, ok := routes[r.URL.RequestURI()]
		if !ok {
			file, ok = routes[r.URL.Path]
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(file, ".html") {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		_, _ = w.Write(LoadTestdata(t, file))
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the requests received so far.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

// Registry returns a registry cache over the embedded registry.
func Registry(t testing.TB) *registry.Cache {
	t.Helper()
	reg, err := registry.EmbeddedLoader()()
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}
	return registry.NewStaticCache(reg)
}

// Info returns the embedded catalog entry for a dataset.
func Info(t testing.TB, name string) catalog.Info {
	t.Helper()
	cat, err := catalog.Embedded()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	info, ok := cat.Get(name)
	if !ok {
		t.Fatalf("Dataset %q not in catalog", name)
	}
	return info
}

// Deps returns loader dependencies pointed at srv.
func Deps(t testing.TB, srv *Server) factory.Deps {
	t.Helper()
	deps := factory.Deps{Registry: Registry(t)}
	if srv != nil {
		deps.BaseURL = srv.URL
		deps.HTTPClient = srv.Client()
	}
	return deps
}

// Run constructs a registered dataset and drives it through a Runner.
func Run(t testing.TB, name string, args dataset.Args, deps factory.Deps, latest bool) *table.Table {
	t.Helper()
	ds, err := factory.New(deps).New(Info(t, name), args)
	if err != nil {
		t.Fatalf("Failed to construct %s: %v", name, err)
	}
	res, err := dataset.NewRunner(ds, Info(t, name), deps.Registry).GetData(context.Background(), nil, latest)
	if err != nil {
		t.Fatalf("GetData(%s) failed: %v", name, err)
	}
	return res.Data
}
