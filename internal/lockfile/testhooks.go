package lockfile

import "os"

// removeToken is swappable so tests can simulate unlink failures during the
// stale sweep.
var removeToken = os.Remove
