package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryContinue(t *testing.T) {
	var r Registry
	r.Initialize()

	// first request of a client is a visit
	assert.True(t, r.Continue("10.0.0.1", "doc-a"))

	// same client, same document: page refresh
	assert.False(t, r.Continue("10.0.0.1", "doc-a"))

	// same client, another document
	assert.True(t, r.Continue("10.0.0.1", "doc-b"))

	// another client on the same document
	assert.True(t, r.Continue("10.0.0.2", "doc-b"))

	assert.Equal(t, 2, r.Count())
}

func TestRegistryDump(t *testing.T) {
	var r Registry
	r.Initialize()

	r.Continue("10.0.0.1", "doc-a")
	r.Continue("10.0.0.2", "doc-b")

	dump := r.Dump(50)
	assert.Len(t, dump, 2)
}
