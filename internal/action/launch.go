package action

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyLaunch = errors.New("action: launch command empty after placeholder strip")

// desktop-entry substitution markers that make no sense when launching
// from a macro press.
var placeholderTokens = map[string]bool{
	"%f": true, "%F": true,
	"%u": true, "%U": true,
	"%d": true, "%D": true,
	"%n": true, "%N": true,
	"%i": true, "%c": true, "%k": true, "%v": true, "%m": true,
}

// stripPlaceholders removes desktop-entry placeholder tokens from a
// launch command line.
func stripPlaceholders(command string) []string {
	fields := strings.Fields(command)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if placeholderTokens[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// focusWindow raises an open window matching the class via the
// window-manager helper. A missing helper or no match reports an error
// and the caller falls through to launching.
func (d *Dispatcher) focusWindow(class string) error {
	_, stderr, code, err := d.runner.Run("wmctrl", "-x", "-a", class)
	if err != nil {
		return fmt.Errorf("action: focus %q: exit %d: %s", class, code, strings.TrimSpace(string(stderr)))
	}
	return nil
}

func (d *Dispatcher) executeLaunch(b Binding) error {
	if b.FocusOrLaunch && strings.TrimSpace(b.Class) != "" {
		if err := d.focusWindow(b.Class); err == nil {
			return nil
		}
		// Silent fall-through: absence of the helper or the window is
		// expected, not an error.
	}
	argv := stripPlaceholders(b.Command)
	if len(argv) == 0 {
		return ErrEmptyLaunch
	}
	_, err := d.launcher.Start(d.actionLogPath, argv[0], argv[1:]...)
	return err
}
