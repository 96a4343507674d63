package id

import (
	"strings"

	"github.com/google/uuid"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// TimeOrdered issues UUIDv7 values, so identifiers sort by creation time.
type TimeOrdered struct{}

func (TimeOrdered) New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Short returns the leading time-ordered segment, enough to tell activities
// apart in file names and listings.
func Short(id string) string {
	head, _, _ := strings.Cut(id, "-")
	return head
}
