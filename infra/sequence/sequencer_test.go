package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIsMonotonic(t *testing.T) {
	s := New(0)
	assert.Equal(t, uint64(1), s.Next())
	assert.Equal(t, uint64(2), s.Next())
	assert.Equal(t, uint64(2), s.Current())
}

func TestReset(t *testing.T) {
	s := New(0)
	s.Next()
	s.Reset(100)
	assert.Equal(t, uint64(101), s.Next())
}
