package cache

import "os"

// Swappable filesystem operations so tests can inject persistence failures
// (disk full, permission denied) without touching real mounts.
var (
	writeFile  = os.WriteFile
	renameFile = os.Rename
)
