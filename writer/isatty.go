package writer

import "os"

// isTerminal is a best-effort, stdlib-only TTY check. Writer is an external
// collaborator per the engine's scope (§1 of the spec) — it does not
// warrant pulling in a dedicated isatty dependency just to color a debug
// dump.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
