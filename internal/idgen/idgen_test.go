package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	testCases := []struct {
		name   string
		id     string
		expect string
	}{
		{name: "uuid", id: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", expect: "6ba7b810"},
		{name: "no separator", id: "boot", expect: "boot"},
	}
	defer func(fn func() string) { NewFunc = fn }(NewFunc)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			NewFunc = func() string { return tc.id }
			assert.Equal(t, tc.expect, Short())
		})
	}
}
