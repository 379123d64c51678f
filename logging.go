package formatenforcer

import (
	"log/slog"
	"os"
)

// logger is the package-level sink for spec §7's two logged-not-raised
// cases: a fatal internal parser trajectory failure, and a sampler that
// emitted a character outside the currently allowed set. No third-party
// structured logger appears anywhere in this corpus for general
// application logging, so this follows the standard library the way the
// rest of the ambient stack follows it (see DESIGN.md).
var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// SetLogger replaces the package-level logger, e.g. to route these
// messages through an application's own slog.Handler.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}
