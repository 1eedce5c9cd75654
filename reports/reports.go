package reports

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

// EXPORT_PREFIX starts the line announcing a payload
const EXPORT_PREFIX = "EXPORT::"

// DIAGNOSTIC_PREFIX starts the line replacing an empty report
const DIAGNOSTIC_PREFIX = "#"

// Report is a table to hand to the exporter.
// Header is the first record of the payload, it does not count as a row.
type Report struct {
	// Format of the payload
	Format Format
	// Filename is the suggested file name
	Filename string
	// Header names the columns
	Header []string
	// Rows are the values, one record per row
	Rows [][]string
	// EmptyMessage is the diagnostic when there is no row
	EmptyMessage string
}

// NewReport returns a report with no row
func NewReport(format Format, filename string, header ...string) Report {
	return Report{
		Format:       format,
		Filename:     filename,
		Header:       header,
		EmptyMessage: "No matching element found.",
	}
}

// AddRow appends a row
func (r *Report) AddRow(values ...string) error {
	if r == nil {
		return errors.New("nil report")
	}

	r.Rows = append(r.Rows, values)
	return nil
}

// IsEmpty returns true for a report with no row
func (r Report) IsEmpty() bool {
	return len(r.Rows) == 0
}

// ExportLine returns the line announcing the payload
func (r Report) ExportLine() string {
	return EXPORT_PREFIX + r.Format.String() + "::" + r.Filename
}

// Payload returns the formatted rows, header first
func (r Report) Payload() (string, error) {
	switch r.Format {
	case CSV, EXCEL:
		records := make([][]string, 0, len(r.Rows)+1)
		if len(r.Header) != 0 {
			records = append(records, r.Header)
		}

		records = append(records, r.Rows...)
		return EncodeRecords(records), nil
	case TXT:
		return r.textTable(), nil
	default:
		return "", fmt.Errorf("unsupported format %s: %w", r.Format, nodes.ErrInvalid)
	}
}

// textTable renders the rows as a text table
func (r Report) textTable() string {
	writer := table.NewWriter()
	writer.SetStyle(table.StyleLight)
	if len(r.Header) != 0 {
		header := make(table.Row, len(r.Header))
		for index, name := range r.Header {
			header[index] = name
		}

		writer.AppendHeader(header)
	}

	for _, values := range r.Rows {
		row := make(table.Row, len(values))
		for index, value := range values {
			row[index] = value
		}

		writer.AppendRow(row)
	}

	return writer.Render()
}

// Write writes the export line then the payload.
// A report with no row writes a single diagnostic line instead.
func (r Report) Write(w io.Writer) error {
	if w == nil {
		return errors.New("nil writer")
	}

	if r.IsEmpty() {
		message := strings.TrimSpace(r.EmptyMessage)
		if !strings.HasPrefix(message, DIAGNOSTIC_PREFIX) {
			message = DIAGNOSTIC_PREFIX + " " + message
		}

		_, err := io.WriteString(w, message+RECORD_SEPARATOR)
		return err
	}

	payload, errPayload := r.Payload()
	if errPayload != nil {
		return errPayload
	}

	_, err := io.WriteString(w, r.ExportLine()+RECORD_SEPARATOR+payload+RECORD_SEPARATOR)
	return err
}

// String returns what Write would write
func (r Report) String() string {
	var builder strings.Builder
	if err := r.Write(&builder); err != nil {
		return DIAGNOSTIC_PREFIX + " " + err.Error()
	}

	return builder.String()
}
