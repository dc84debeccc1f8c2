package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by results that can print as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// PrintTable writes r as a borderless, left-aligned table.
func PrintTable(w io.Writer, r TableRenderer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(r.Headers())

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(r.Rows())
	table.Render()
	return nil
}

// KeyValues is a two-column FIELD/VALUE table for detail views.
type KeyValues [][2]string

// Add appends one field.
func (kv *KeyValues) Add(key, value string) {
	*kv = append(*kv, [2]string{key, value})
}

func (kv KeyValues) Headers() []string {
	return []string{"Field", "Value"}
}

func (kv KeyValues) Rows() [][]string {
	rows := make([][]string, len(kv))
	for i, pair := range kv {
		rows[i] = []string{pair[0], pair[1]}
	}
	return rows
}
