package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_RecordCounts(t *testing.T) {
	p := newProgress(4)
	snap, seq := p.record("✓ a", true, true)
	assert.Equal(t, 1, seq)
	assert.Equal(t, 25, snap["percent"])

	snap, seq = p.record("✗ b", false, false)
	assert.Equal(t, 2, seq)
	assert.Equal(t, 1, snap["processed"])
	assert.Equal(t, 1, snap["failed"])
	assert.Equal(t, []string{"✓ a", "✗ b"}, snap["log"])

	processed, failed, emailed := p.counts()
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{processed, failed, emailed})
}

func TestProgress_FlushDropsStaleSnapshots(t *testing.T) {
	p := newProgress(3)
	first, s1 := p.record("one", true, false)
	second, s2 := p.record("two", true, false)

	var written []int
	write := func(u map[string]interface{}) { written = append(written, u["processed"].(int)) }

	// The later snapshot reaches the store first; the earlier one must not overwrite it.
	p.flush(second, s2, write)
	p.flush(first, s1, write)
	require.Equal(t, []int{2}, written)

	third, s3 := p.record("three", true, false)
	p.flush(third, s3, write)
	assert.Equal(t, []int{2, 3}, written)
}

func TestProgress_LogIsBounded(t *testing.T) {
	p := newProgress(maxLogLines + 5)
	for i := 0; i < maxLogLines+5; i++ {
		p.record("line", true, false)
	}
	snap := p.snapshot()
	assert.Len(t, snap["log"], maxLogLines)
}
