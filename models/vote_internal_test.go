package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentLockReused(t *testing.T) {
	first := documentLock("lock-reuse")
	second := documentLock("lock-reuse")

	assert.Same(t, first, second)
}

func TestFlushVoteLocks(t *testing.T) {

	// pad the registry past the flush threshold with idle entries
	voteLocks.Lock()
	for i := 0; i < 5100; i++ {
		voteLocks.locks[fmt.Sprintf("idle-%d", i)] = &voteLock{accessed: time.Now().Add(-30 * time.Minute)}
	}
	voteLocks.Unlock()

	fresh := documentLock("lock-fresh")

	FlushVoteLocks()

	voteLocks.Lock()
	_, idleKept := voteLocks.locks["idle-0"]
	kept, freshKept := voteLocks.locks["lock-fresh"]
	voteLocks.Unlock()

	assert.False(t, idleKept)
	require.True(t, freshKept)
	assert.Same(t, fresh, &kept.mu)
}
