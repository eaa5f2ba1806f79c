package tracker

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore(t *testing.T) {
	t.Run("unseen number is not duplicate", func(t *testing.T) {
		s := NewStateStore()
		assert.False(t, s.IsDuplicate("INV-2024-0001"))
	})

	t.Run("marked number is duplicate", func(t *testing.T) {
		s := NewStateStore()
		s.MarkProcessed("INV-2024-0001")
		assert.True(t, s.IsDuplicate("INV-2024-0001"))
		assert.False(t, s.IsDuplicate("INV-2024-0002"))
	})

	t.Run("marking is idempotent", func(t *testing.T) {
		s := NewStateStore()
		s.MarkProcessed("INV-2024-0001")
		s.MarkProcessed("INV-2024-0001")
		assert.Equal(t, 1, s.Len())
		assert.True(t, s.IsDuplicate("INV-2024-0001"))
	})

	t.Run("malformed numbers are tracked like any other", func(t *testing.T) {
		s := NewStateStore()
		assert.True(t, s.CheckAndMark(""))
		assert.False(t, s.CheckAndMark(""))
		assert.True(t, s.CheckAndMark("not an invoice"))
		assert.False(t, s.CheckAndMark("not an invoice"))
	})
}

func TestStateStore_CheckAndMark(t *testing.T) {
	s := NewStateStore()

	// Interleave several numbers; only the first occurrence of each passes.
	sequence := []struct {
		number string
		unique bool
	}{
		{"INV-2024-0001", true},
		{"INV-2024-0002", true},
		{"INV-2024-0001", false},
		{"INV-2024-0003", true},
		{"INV-2024-0002", false},
		{"INV-2024-0001", false},
	}

	for i, step := range sequence {
		assert.Equal(t, step.unique, s.CheckAndMark(step.number), "step %d (%s)", i, step.number)
	}
	assert.Equal(t, 3, s.Len())
}

func TestStateStore_CheckAndMarkAfterExplicitMark(t *testing.T) {
	s := NewStateStore()
	s.MarkProcessed("INV-2024-0009")
	assert.False(t, s.CheckAndMark("INV-2024-0009"))
	assert.Equal(t, 1, s.Len(), "a failing check has no side effects")
}

func TestStateStore_ConcurrentFirstOccurrenceWins(t *testing.T) {
	s := NewStateStore()

	const goroutines = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if s.CheckAndMark("INV-2024-0042") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load(), "exactly one caller sees the number as unique")
	assert.True(t, s.IsDuplicate("INV-2024-0042"))
}
