package message

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPair(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	firstA, firstB := canonicalPair(a, b)
	secondA, secondB := canonicalPair(b, a)

	// Both argument orders map to the same canonical pair.
	assert.Equal(t, firstA, secondA)
	assert.Equal(t, firstB, secondB)
	assert.Equal(t, a, firstA)
	assert.Equal(t, b, firstB)
}

func TestCanonicalPairRandomized(t *testing.T) {
	for i := 0; i < 20; i++ {
		a := uuid.New()
		b := uuid.New()
		require.NotEqual(t, a, b)

		x1, y1 := canonicalPair(a, b)
		x2, y2 := canonicalPair(b, a)
		assert.Equal(t, x1, x2)
		assert.Equal(t, y1, y2)
	}
}
