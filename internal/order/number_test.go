package order

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumberFormat(t *testing.T) {
	n := NewNumber()

	parts := strings.Split(n, "-")
	require.Len(t, parts, 3, "number: %s", n)
	assert.Equal(t, NumberPrefix, parts[0])

	_, err := strconv.ParseInt(parts[1], 10, 64)
	assert.NoError(t, err, "timestamp part: %s", parts[1])

	require.Len(t, parts[2], 3, "suffix part: %s", parts[2])
	_, err = strconv.Atoi(parts[2])
	assert.NoError(t, err, "suffix part: %s", parts[2])
}
