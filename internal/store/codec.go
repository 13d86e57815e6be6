package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned when a player has no stored record.
var ErrNotFound = errors.New("player not found")

// FieldCountError reports a stored value that does not split into 16 fields.
type FieldCountError struct {
	Player string
	Got    int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("record for %q has %d fields, want %d", e.Player, e.Got, RecordFieldCount)
}

// EncodeRecord serializes the 16 fields as a single CSV line without the trailing
// newline. Fields holding a comma, quote or line break are quoted, everything else
// is written as a plain comma join. A "\r\n" inside a field reads back as "\n";
// scraped text never carries one since the extractor collapses whitespace.
func EncodeRecord(rec *PlayerStatRecord) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rec.Fields()); err != nil {
		return "", fmt.Errorf("encoding record for %q: %w", rec.Player, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("encoding record for %q: %w", rec.Player, err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeRecord parses a value written by EncodeRecord back into a record.
func DecodeRecord(player, value string) (*PlayerStatRecord, error) {
	r := csv.NewReader(strings.NewReader(value))
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FieldCountError{Player: player, Got: 0}
		}
		return nil, fmt.Errorf("decoding record for %q: %w", player, err)
	}
	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding record for %q: trailing data", player)
	}

	return RecordFromFields(player, fields)
}
