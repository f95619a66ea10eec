package ordernumber

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	number := gen.Generate("ORD-")
	require.True(t, strings.HasPrefix(number, "ORD-"))
	// Prefix + timestamp (14 digits) + nano suffix (6 digits).
	require.Len(t, number, len("ORD-")+14+6)

	stamp := number[len("ORD-") : len("ORD-")+14]
	parsed, err := time.Parse("20060102150405", stamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)

	for _, r := range number[len("ORD-"):] {
		assert.True(t, r >= '0' && r <= '9', "unexpected character %q", r)
	}
}

func TestGenerate_PrefixIsCallerControlled(t *testing.T) {
	gen := NewGenerator()

	assert.True(t, strings.HasPrefix(gen.Generate("RIF-"), "RIF-"))
	assert.NotContains(t, gen.Generate(""), "-")
}
