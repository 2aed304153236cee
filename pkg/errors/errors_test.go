package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("dataset", "FDRS")
		assert.Equal(t, `dataset "FDRS" not found`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		wrapped := fmt.Errorf("lookup: %w", pkgerrors.NewNotFoundError("dataset", "x"))
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("Country", "Nowhereland", "unrecognised values")
		assert.Equal(t, "validation failed for field Country: unrecognised values", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "bad filter"}
		assert.Equal(t, "validation failed: bad filter", err.Error())
	})
}

func TestConfigError(t *testing.T) {
	base := errors.New("file missing")
	err := pkgerrors.NewConfigError("OCAC", "filepath is required", base)

	assert.Contains(t, err.Error(), "OCAC")
	assert.Contains(t, err.Error(), "filepath is required")
	assert.True(t, pkgerrors.IsConfigError(err))
	assert.Equal(t, base, errors.Unwrap(err))
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{429, pkgerrors.ErrRateLimited},
		{401, pkgerrors.ErrAPIKeyInvalid},
		{403, pkgerrors.ErrAPIKeyInvalid},
		{500, pkgerrors.ErrSourceUnavailable},
		{503, pkgerrors.ErrSourceUnavailable},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := pkgerrors.NewAPIError("databank", tt.status, "failed")
			assert.Contains(t, err.Error(), "databank")
			assert.True(t, errors.Is(err, tt.sentinel))
		})
	}

	t.Run("client error matches nothing", func(t *testing.T) {
		err := pkgerrors.NewAPIError("databank", 404, "missing")
		assert.False(t, pkgerrors.IsRateLimited(err))
		assert.False(t, pkgerrors.IsSourceUnavailable(err))
	})
}

func TestUnknownIdentityError(t *testing.T) {
	err := pkgerrors.NewUnknownIdentityError("ISO3", "National Society name", []string{"ZZZ", "AAA", "ZZZ"})

	assert.Equal(t, []string{"AAA", "ZZZ"}, err.Values)
	assert.Equal(t, `unknown ISO3 values will not be converted to National Society name: ["AAA", "ZZZ"]`, err.Error())
	assert.True(t, pkgerrors.IsUnknownIdentity(err))

	var target *pkgerrors.UnknownIdentityError
	require.True(t, errors.As(fmt.Errorf("wrap: %w", err), &target))
	assert.Equal(t, "ISO3", target.Dimension)
}

func TestSchemaMismatchError(t *testing.T) {
	err := pkgerrors.NewSchemaMismatchError("INFORM Risk", "columns", []string{"URL"}, []string{"Note", "Unit"})

	assert.Equal(t, `schema mismatch in INFORM Risk columns: missing ["URL"]; extra ["Note", "Unit"]`, err.Error())
	assert.True(t, pkgerrors.IsSchemaMismatch(err))
}

func TestUnsupportedFilterError(t *testing.T) {
	err := &pkgerrors.UnsupportedFilterError{Dataset: "OCAC", Keys: []string{"ISO3"}}
	assert.Contains(t, err.Error(), "OCAC")
	assert.True(t, errors.Is(err, pkgerrors.ErrUnsupportedFilter))
}

func TestPartialBatchError(t *testing.T) {
	err := &pkgerrors.PartialBatchError{Skipped: map[string]error{
		"YABC": errors.New("missing filepath"),
		"FDRS": errors.New("missing api_key"),
	}}

	assert.Equal(t, "2 datasets skipped: FDRS: missing api_key; YABC: missing filepath", err.Error())
	assert.True(t, errors.Is(err, pkgerrors.ErrPartialBatch))
}

func TestWrapHelpers(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
	assert.NoError(t, pkgerrors.WrapParse("csv", "x", nil))
	assert.NoError(t, pkgerrors.WrapAPI("x", 500, nil))
	assert.NoError(t, pkgerrors.WrapValidation("x", nil))

	err := pkgerrors.WrapIO("open", "/tmp/ocac.xlsx", errors.New("permission denied"))
	var ioErr *pkgerrors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Operation)

	err = pkgerrors.WrapAPI("go", 502, errors.New("bad gateway"))
	assert.True(t, pkgerrors.IsSourceUnavailable(err))

	err = pkgerrors.WrapParse("yaml", "datasets.yaml", errors.New("bad indent"))
	assert.Contains(t, err.Error(), "datasets.yaml")
}
