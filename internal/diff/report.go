package diff

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format is the report output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an output format string
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (supported: text, json, yaml)", s)
	}
}

// Reporter writes comparison results to a writer
type Reporter struct {
	w      io.Writer
	format Format
}

// NewReporter creates a reporter for the given format
func NewReporter(w io.Writer, format Format) *Reporter {
	return &Reporter{w: w, format: format}
}

// Write renders the result. In text format it emits one canonical line
// per mismatch and nothing at all when the tables agree, so an empty
// report signals full agreement.
func (r *Reporter) Write(result *Result) error {
	switch r.format {
	case FormatJSON:
		encoder := json.NewEncoder(r.w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case FormatYAML:
		encoder := yaml.NewEncoder(r.w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(result)
	default:
		for _, m := range result.Mismatches {
			if _, err := fmt.Fprintln(r.w, m.String()); err != nil {
				return err
			}
		}
		return nil
	}
}
