package iface

// ProgressRow is a snapshot of a single step's progress.
type ProgressRow struct {
	Module string
	Pct    int
	Label  string
}

// ProgressTracker reports how far a multi-step operation has advanced.
type ProgressTracker interface {
	ProgressRows() []ProgressRow
	Set(id string, pct int, label string)
	Render()
	Clear()
}

type ProgressInfo struct {
	Percentage  int
	DisplayText string
	Timestamp   string
}
