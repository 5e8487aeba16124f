package output

import (
	"fmt"
	"io"
	"os"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use yaml or json)", s)
	}
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	return Write(os.Stdout, v, OutputFormat, PrettyOutput)
}

// Write serializes v to w. pretty only affects JSON; YAML is always
// multi-line.
func Write(w io.Writer, v interface{}, format Format, pretty bool) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, v, pretty)
	case FormatYAML:
		return WriteYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
