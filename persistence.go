package nsdata

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ifrc-nsd/nsdata/internal/output"
	"github.com/ifrc-nsd/nsdata/pkg/collector"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence handles saving collected data.
type Persistence interface {
	// Save writes every result of batch to its own file in dir and
	// returns the paths written
	Save(batch *collector.Batch, dir string, format output.Format) ([]string, error)
}

// Save writes one file per dataset result. Files are named after the
// dataset with an extension matching format.
func (c *client) Save(batch *collector.Batch, dir string, format output.Format) ([]string, error) {
	if format == "" {
		format = output.FormatCSV
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}

	formatter := output.NewFormatter(format)
	paths := make([]string, 0, len(batch.Results))
	for _, res := range batch.Results {
		path := filepath.Join(dir, FileName(res.Name, format))
		if err := writeFile(path, func(f *os.File) error {
			return formatter.Format(f, output.Table{Table: res.Data})
		}); err != nil {
			return paths, err
		}
		logging.Debug().Str("dataset", res.Name).Str("path", path).Msg("Saved dataset")
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	return nil
}

// FileName turns a dataset name into a file name, for example
// "World Bank Population" becomes "world_bank_population.csv".
func FileName(dataset string, format output.Format) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(dataset)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	name := strings.TrimSuffix(b.String(), "_")
	return name + extension(format)
}

func extension(format output.Format) string {
	switch format {
	case output.FormatJSON:
		return ".json"
	case output.FormatYAML:
		return ".yaml"
	case output.FormatMarkdown:
		return ".md"
	case output.FormatTable, output.FormatWide:
		return ".txt"
	}
	return ".csv"
}
