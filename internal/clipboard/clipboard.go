// Package clipboard copies generated prompts to the system clipboard.
package clipboard

import (
	stderrors "errors"

	"github.com/atotto/clipboard"

	"github.com/cusc/copywriter/internal/errors"
)

var errNoClipboard = stderrors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")

// Package-level hooks so tests don't touch the real clipboard.
var (
	writeAll    = clipboard.WriteAll
	readAll     = clipboard.ReadAll
	unsupported = func() bool { return clipboard.Unsupported }
)

// Available reports whether a clipboard backend was found.
func Available() bool {
	return !unsupported()
}

// Copy places text on the clipboard. Failures come back as
// CLIPBOARD_UNAVAILABLE; the caller still has the text.
func Copy(text string) error {
	if unsupported() {
		return errors.NewClipboardUnavailable(errNoClipboard)
	}
	if err := writeAll(text); err != nil {
		return errors.NewClipboardUnavailable(err)
	}
	return nil
}

// Paste reads the clipboard's current text.
func Paste() (string, error) {
	if unsupported() {
		return "", errors.NewClipboardUnavailable(errNoClipboard)
	}
	text, err := readAll()
	if err != nil {
		return "", errors.NewClipboardUnavailable(err)
	}
	return text, nil
}
