package reports

import (
	"fmt"
	"strings"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

// FIELD_SEPARATOR separates fields of a record
const FIELD_SEPARATOR = ","

// RECORD_SEPARATOR separates records
const RECORD_SEPARATOR = "\n"

// EncodeField quotes value, doubling the quotes it contains
func EncodeField(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// EncodeRecord returns the fields as one record, every field quoted
func EncodeRecord(fields []string) string {
	encoded := make([]string, len(fields))
	for index, field := range fields {
		encoded[index] = EncodeField(field)
	}

	return strings.Join(encoded, FIELD_SEPARATOR)
}

// EncodeRecords returns records separated by new lines, with no final new line
func EncodeRecords(records [][]string) string {
	lines := make([]string, len(records))
	for index, record := range records {
		lines[index] = EncodeRecord(record)
	}

	return strings.Join(lines, RECORD_SEPARATOR)
}

// ParseRecords reads a payload made by EncodeRecords, it is its exact inverse.
// Every field is quoted, bytes between quotes are kept as they are.
// Records may have different sizes.
func ParseRecords(payload string) ([][]string, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	var records [][]string
	var record []string
	position := 0
	for {
		field, next, err := parseField(payload, position)
		if err != nil {
			return nil, fmt.Errorf("malformed payload: %w: %w", err, nodes.ErrInvalid)
		}

		record = append(record, field)
		position = next
		switch {
		case position == len(payload):
			return append(records, record), nil
		case payload[position] == FIELD_SEPARATOR[0]:
			position++
		case payload[position] == RECORD_SEPARATOR[0]:
			records = append(records, record)
			record = nil
			position++
			if position == len(payload) {
				return records, nil
			}
		default:
			return nil, fmt.Errorf("malformed payload: unexpected %q at %d: %w", payload[position], position, nodes.ErrInvalid)
		}
	}
}

// parseField reads the quoted field starting at position.
// It returns the field and the position after its closing quote.
func parseField(payload string, position int) (string, int, error) {
	if position >= len(payload) || payload[position] != '"' {
		return "", position, fmt.Errorf("expecting a quote at %d", position)
	}

	var field strings.Builder
	for index := position + 1; index < len(payload); index++ {
		if current := payload[index]; current != '"' {
			field.WriteByte(current)
		} else if index+1 < len(payload) && payload[index+1] == '"' {
			field.WriteByte('"')
			index++
		} else {
			return field.String(), index + 1, nil
		}
	}

	return "", position, fmt.Errorf("unterminated field at %d", position)
}
