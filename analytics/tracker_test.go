package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchFields(t *testing.T) {
	fields := searchFields("mongo index", 0.3, "u1")

	assert.Equal(t, "document", fields["domain"])
	assert.Equal(t, 0.3, fields["alpha"])
	assert.Equal(t, "mongo index", fields["term"])
	assert.Equal(t, "u1", fields["userId"])
}
