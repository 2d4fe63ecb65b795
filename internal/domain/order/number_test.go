package order

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberGenerator_Format(t *testing.T) {
	g := NewNumberGenerator()
	g.now = func() time.Time {
		return time.Date(2024, time.March, 7, 15, 4, 5, 0, time.UTC)
	}

	n := g.Next()
	assert.Regexp(t, `^ORD-20240307-[0-9A-F]{8}$`, n)
}

func TestNumberGenerator_Unique(t *testing.T) {
	g := NewNumberGenerator()

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		n := g.Next()
		_, dup := seen[n]
		require.False(t, dup, fmt.Sprintf("duplicate number %s at iteration %d", n, i))
		seen[n] = struct{}{}
	}
}
