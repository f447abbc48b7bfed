// Package clipboard is the best-effort system clipboard used to copy
// generated prompts.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is present.
var ErrUnavailable = errors.New("clipboard unavailable")

// Writer copies text to a clipboard.
type Writer interface {
	Available() bool
	Write(text string) error
}

// System is the operating system clipboard.
type System struct{}

// Available reports whether a clipboard utility was found at startup.
func (System) Available() bool {
	return !clipboard.Unsupported
}

// Write copies text to the clipboard.
func (s System) Write(text string) error {
	if !s.Available() {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Memory is an in-process clipboard for tests and headless use.
type Memory struct {
	Text string
	// Disabled makes Available report false.
	Disabled bool
	// Err, when set, is returned by Write.
	Err error
}

// Available reports whether the clipboard accepts writes.
func (m *Memory) Available() bool {
	return !m.Disabled
}

// Write stores text unless the clipboard is disabled or failing.
func (m *Memory) Write(text string) error {
	if m.Disabled {
		return ErrUnavailable
	}
	if m.Err != nil {
		return m.Err
	}
	m.Text = text
	return nil
}
