package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewFunc generates identifiers; tests may stub it.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier as string.
func New() string { return NewFunc() }

// Short returns the first group of a new identifier, used for boot ids
// that appear on every log line.
func Short() string {
	id := NewFunc()
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
