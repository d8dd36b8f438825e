package helpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentIDDeterministic(t *testing.T) {
	a := ContentID("the very same text")
	b := ContentID("the very same text")
	assert.Equal(t, a, b)

	// title or metadata never enter the id, only content does
	c := ContentID("some other text")
	assert.NotEqual(t, a, c)
}

func TestContentIDIsUUID(t *testing.T) {
	id := ContentID("whatever")

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}
