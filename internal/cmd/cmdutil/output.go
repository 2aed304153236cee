package cmdutil

import (
	"fmt"
	"io"

	"github.com/ifrc-nsd/nsdata/internal/output"
	"github.com/ifrc-nsd/nsdata/pkg/collector"
)

// Render writes data in the requested format. Structured formats (json and
// yaml) write raw when it is non-nil; every other format writes the table.
func Render(w io.Writer, format string, tableData any, raw any) error {
	f, err := resolve(format)
	if err != nil {
		return err
	}
	data := tableData
	if raw != nil && (f == output.FormatJSON || f == output.FormatYAML) {
		data = raw
	}
	return output.NewFormatter(f).Format(w, data)
}

// Structured reports whether format resolves to json or yaml.
func Structured(format string) bool {
	f, err := resolve(format)
	return err == nil && (f == output.FormatJSON || f == output.FormatYAML)
}

func resolve(format string) (output.Format, error) {
	f, err := output.ParseFormat(format)
	if err != nil {
		return "", err
	}
	return output.DetectFormat(string(f)), nil
}

// PrintSkipped reports the datasets a batch could not produce.
func PrintSkipped(w io.Writer, skipped []collector.Skipped) {
	if len(skipped) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%d dataset(s) skipped:\n", len(skipped))
	_ = output.NewFormatter(output.FormatTable).Format(w, output.SkippedData(skipped))
}
