package registration

import (
	"fmt"
	"strings"

	"github.com/mcoot/tourneybot/internal/model"
)

// detailMarkers must all appear somewhere in a details message
var detailMarkers = []string{"Username:", "UID:", "Level:"}

// Details are the participant-entered fields of a registration
type Details struct {
	Username string
	UID      string
	Level    string
}

// ParseDetails reads a three-line details message.
//
// The markers only gate the parse: values are taken positionally from the
// first three lines (username, UID, level), each being everything after the
// line's first colon with surrounding whitespace trimmed.
func ParseDetails(text string) (Details, error) {
	for _, marker := range detailMarkers {
		if !strings.Contains(text, marker) {
			return Details{}, fmt.Errorf("%w: missing %q", model.ErrInvalidDetailsFormat, marker)
		}
	}

	lines := strings.Split(text, "\n")
	if len(lines) < len(detailMarkers) {
		return Details{}, fmt.Errorf("%w: expected %d lines", model.ErrInvalidDetailsFormat, len(detailMarkers))
	}

	values := make([]string, len(detailMarkers))
	for i := range values {
		_, value, ok := strings.Cut(lines[i], ":")
		if !ok {
			return Details{}, fmt.Errorf("%w: line %d has no colon", model.ErrInvalidDetailsFormat, i+1)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return Details{}, fmt.Errorf("%w: line %d is empty", model.ErrInvalidDetailsFormat, i+1)
		}
		values[i] = value
	}

	return Details{
		Username: values[0],
		UID:      values[1],
		Level:    values[2],
	}, nil
}
