package reports

import (
	"fmt"
	"strings"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

// Format is the payload format the exporter produces
type Format int

const (
	// CSV payload, saved as is
	CSV Format = iota
	// TXT payload, a text table
	TXT
	// EXCEL payload is CSV, the exporter converts it to a workbook
	EXCEL
)

// String returns the format name used in the export line
func (f Format) String() string {
	switch f {
	case CSV:
		return "CSV"
	case TXT:
		return "TXT"
	case EXCEL:
		return "EXCEL"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the usual file extension for the format
func (f Format) Extension() string {
	switch f {
	case TXT:
		return "txt"
	case EXCEL:
		return "xlsx"
	default:
		return "csv"
	}
}

// ParseFormat returns the format by name, case insensitive
func ParseFormat(value string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "CSV":
		return CSV, nil
	case "TXT", "TEXT":
		return TXT, nil
	case "EXCEL", "XLSX":
		return EXCEL, nil
	default:
		return CSV, fmt.Errorf("unknown format %q: %w", value, nodes.ErrInvalid)
	}
}
