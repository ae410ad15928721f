package watcher

import (
	"path/filepath"
)

// ChangeAnalysis describes what a batch of store file events means for
// cached graph state
type ChangeAnalysis struct {
	DataChanged  bool // committed data may differ: main file or log written
	Checkpointed bool // the main database file itself was rewritten
	ChangedFiles []string
}

// AnalyzeChanges classifies an event for the database at dbPath. Writes to
// the -shm index alone happen on every read transaction and change no data.
func AnalyzeChanges(event ChangeEvent, dbPath string) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	base := filepath.Base(dbPath)
	for _, p := range event.Paths {
		name := filepath.Base(p)
		switch {
		case name == base:
			analysis.DataChanged = true
			analysis.Checkpointed = true
		case name == base+"-wal", name == base+"-journal":
			analysis.DataChanged = true
		}
	}

	return analysis
}
