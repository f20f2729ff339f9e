package main

import (
	"fmt"
	"log/slog"

	"github.com/scanbd/scanbd/internal/sane"
)

// newSaneLibrary is the seam where a real scanner-access binding is wired
// in. The scanner library itself is an external collaborator out of this
// repository's scope — only the internal/sane interfaces it must satisfy
// are specified here. This build has no real binding linked in, so it
// fails fast with an actionable error rather than running a daemon that
// can never enumerate a device.
func newSaneLibrary(logger *slog.Logger) (sane.Library, error) {
	return nil, fmt.Errorf("scanbd: no internal/sane.Library implementation is linked into this build; see internal/sane for the interface a real scanner-access binding must satisfy")
}
