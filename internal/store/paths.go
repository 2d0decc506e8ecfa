package store

import "path/filepath"

// Counter file names, one per log category, kept directly under the sender outdir.
const (
	CrashCounterFile   = "currentcrashlog"
	StatsCounterFile   = "currentstatslog"
	VMEventCounterFile = "currentvmlog"

	BootIDRecordFile = "currentbootid"
	HistoryFile      = "history_event"
	CrashFileName    = "crashfile"
)

// Slot prefixes. A slot directory is <outdir>/<prefix><index>_<id>.
const (
	CrashPrefix   = "crashlog"
	StatsPrefix   = "stats"
	VMEventPrefix = "vmevent"
)

func CounterFiles() []string {
	return []string{CrashCounterFile, StatsCounterFile, VMEventCounterFile}
}

func CounterPath(outdir, name string) string {
	return filepath.Join(outdir, name)
}

func BootIDRecordPath(outdir string) string {
	return filepath.Join(outdir, BootIDRecordFile)
}

func HistoryPath(outdir string) string {
	return filepath.Join(outdir, HistoryFile)
}

// SlotRoot is the prefix of every slot path for a category. It is not a
// directory of its own.
func SlotRoot(outdir, prefix string) string {
	return filepath.Join(outdir, prefix)
}
