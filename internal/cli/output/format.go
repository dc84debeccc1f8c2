// Package output renders command results as tables, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format is an output format selectable with -o.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses the value of an -o flag. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// Printer writes command results in one format.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter returns a Printer writing to out. Status messages are colored
// only when out is a terminal.
func NewPrinter(out io.Writer, format Format) *Printer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{out: out, format: format, color: color}
}

// Format returns the printer's output format.
func (p *Printer) Format() Format {
	return p.format
}

// Print renders data. Table output requires a TableRenderer; anything else
// falls back to JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintYAML(p.out, data)
	case FormatTable:
		if r, ok := data.(TableRenderer); ok {
			return PrintTable(p.out, r)
		}
		return PrintJSON(p.out, data)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

// Success prints msg in green on terminals.
func (p *Printer) Success(msg string) {
	p.status("32", msg)
}

// Warning prints msg in yellow on terminals.
func (p *Printer) Warning(msg string) {
	p.status("33", msg)
}

func (p *Printer) status(code, msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "\033[%sm%s\033[0m\n", code, msg)
		return
	}
	_, _ = fmt.Fprintln(p.out, msg)
}
