package generation

import (
	"sync"

	"github.com/certportal/internal/domain"
)

// maxLogLines bounds the job log persisted with the job item.
const maxLogLines = 200

// progress accumulates per-recipient outcomes from concurrent workers.
type progress struct {
	mu        sync.Mutex
	total     int
	processed int
	failed    int
	emailed   int
	log       []string

	// writeMu orders job writes; written is the outcome count last persisted.
	writeMu sync.Mutex
	written int
}

func newProgress(total int) *progress {
	return &progress{total: total}
}

// record adds one outcome and returns the job fields to persist along with
// the number of outcomes they cover.
func (p *progress) record(line string, ok, emailed bool) (map[string]interface{}, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ok {
		p.processed++
	} else {
		p.failed++
	}
	if emailed {
		p.emailed++
	}
	if line != "" {
		p.log = append(p.log, line)
		if len(p.log) > maxLogLines {
			p.log = p.log[len(p.log)-maxLogLines:]
		}
	}
	return p.snapshotLocked(), p.processed + p.failed
}

// flush hands snap to write unless a snapshot covering at least as many
// outcomes already went out, so a slow worker never rolls the job back.
func (p *progress) flush(snap map[string]interface{}, seq int, write func(map[string]interface{})) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if seq <= p.written {
		return
	}
	write(snap)
	p.written = seq
}

func (p *progress) snapshot() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *progress) snapshotLocked() map[string]interface{} {
	log := make([]string, len(p.log))
	copy(log, p.log)
	return map[string]interface{}{
		"processed": p.processed,
		"failed":    p.failed,
		"emailed":   p.emailed,
		"percent":   domain.ComputePercent(p.processed+p.failed, p.total),
		"log":       log,
	}
}

func (p *progress) counts() (processed, failed, emailed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.failed, p.emailed
}
