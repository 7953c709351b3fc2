package progress

import (
	"sync"

	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
)

// LogProgressTracker reports each step once, through the logger, when it reaches 100%.
type LogProgressTracker struct {
	mu         sync.Mutex
	logger     iface.Logger
	progress   map[string]*iface.ProgressInfo
	order      []string
	maxTracked int
}

func NewLogProgressTracker(max int, logger iface.Logger) *LogProgressTracker {
	return &LogProgressTracker{
		logger:     logger,
		progress:   make(map[string]*iface.ProgressInfo),
		order:      make([]string, 0, max),
		maxTracked: max,
	}
}

// ProgressRows returns all entries in the order they were first reported.
func (s *LogProgressTracker) ProgressRows() []iface.ProgressRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rows(s.order, s.progress)
}

func (s *LogProgressTracker) Set(id string, pct int, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, exists := s.progress[id]
	switch {
	case exists && info.Percentage >= pct:
		return
	case exists:
		info.Percentage = pct
		info.DisplayText = label
	case len(s.progress) >= s.maxTracked:
		return
	default:
		info = &iface.ProgressInfo{Percentage: pct, DisplayText: label}
		s.progress[id] = info
		s.order = append(s.order, id)
	}

	if info.Percentage == 100 {
		s.logger.Info("Progress: %s - %d%%", info.DisplayText, info.Percentage)
	}
}

func (s *LogProgressTracker) Render() {}

func (s *LogProgressTracker) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress = make(map[string]*iface.ProgressInfo)
	s.order = s.order[:0]
}

func rows(order []string, progress map[string]*iface.ProgressInfo) []iface.ProgressRow {
	out := make([]iface.ProgressRow, 0, len(order))
	for _, id := range order {
		info := progress[id]
		out = append(out, iface.ProgressRow{
			Module: id,
			Pct:    info.Percentage,
			Label:  info.DisplayText,
		})
	}
	return out
}
