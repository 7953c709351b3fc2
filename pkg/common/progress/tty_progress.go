package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
)

const timestampLayout = "2006/01/02 15:04:05"

// TTYProgressTracker redraws a block of progress bars in place.
type TTYProgressTracker struct {
	mu         sync.Mutex
	progress   map[string]*iface.ProgressInfo
	order      []string
	maxTracked int
	linesDrawn int
	target     io.Writer
}

func NewTTYProgressTracker(max int, target io.Writer) *TTYProgressTracker {
	return &TTYProgressTracker{
		progress:   make(map[string]*iface.ProgressInfo),
		order:      make([]string, 0, max),
		maxTracked: max,
		target:     target,
	}
}

func (t *TTYProgressTracker) ProgressRows() []iface.ProgressRow {
	t.mu.Lock()
	defer t.mu.Unlock()
	return rows(t.order, t.progress)
}

func (t *TTYProgressTracker) Set(id string, pct int, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ts := time.Now().Format(timestampLayout)

	if info, exists := t.progress[id]; exists {
		if info.Percentage >= pct {
			return
		}
		info.Percentage = pct
		info.DisplayText = label
		info.Timestamp = ts
		return
	}
	if len(t.progress) >= t.maxTracked {
		return
	}
	t.progress[id] = &iface.ProgressInfo{Percentage: pct, DisplayText: label, Timestamp: ts}
	t.order = append(t.order, id)
}

func (t *TTYProgressTracker) Render() {
	t.mu.Lock()
	defer t.mu.Unlock()

	// move the cursor back over the previous frame
	if t.linesDrawn > 0 {
		fmt.Fprintf(t.target, "\033[%dA", t.linesDrawn)
	}
	t.linesDrawn = 0

	for _, id := range t.order {
		info := t.progress[id]
		fmt.Fprintf(t.target, "\r\033[K%s %s %3d%% %s\n", info.Timestamp, buildBar(info.Percentage), info.Percentage, info.DisplayText)
		t.linesDrawn++
	}
}

func (t *TTYProgressTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.progress = make(map[string]*iface.ProgressInfo)
	t.order = t.order[:0]
	t.linesDrawn = 0
}

func buildBar(pct int) string {
	const total = 20
	pct = max(0, min(pct, 100))
	filled := pct * total / 100
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", total-filled) + "]"
}
