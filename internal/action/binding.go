package action

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NoobyNull/crowdisplay/internal/protocol/message"
)

// Type enumerates the configurable action kinds.
type Type string

const (
	TypeKey    Type = "key"
	TypeMedia  Type = "media"
	TypeLaunch Type = "launch"
	TypeShell  Type = "shell"
	TypeURL    Type = "url"
)

var (
	ErrUnknownAction  = errors.New("action: unknown action type")
	ErrInvalidBinding = errors.New("action: invalid binding")
)

// Identity names a pressable control without encoding what it does.
type Identity struct {
	Page   uint8
	Widget uint8
}

func (id Identity) String() string {
	if id.Page == message.HardwarePage {
		return fmt.Sprintf("hw/%d", id.Widget)
	}
	return fmt.Sprintf("%d/%d", id.Page, id.Widget)
}

// HardwareIdentity places a hardware input in the shared identity space.
func HardwareIdentity(input uint8) Identity {
	return Identity{Page: message.HardwarePage, Widget: input}
}

// Binding is one identity's configured action.
type Binding struct {
	Action Type

	// key
	Modifiers []string
	Key       string

	// media
	MediaKey string

	// launch
	Command       string
	Class         string
	FocusOrLaunch bool

	// shell
	Shell string

	// url
	URL string
}

// Validate checks the fields the binding's type requires.
func (b Binding) Validate() error {
	switch b.Action {
	case TypeKey:
		if strings.TrimSpace(b.Key) == "" {
			return fmt.Errorf("%w: key binding missing key", ErrInvalidBinding)
		}
	case TypeMedia:
		if strings.TrimSpace(b.MediaKey) == "" {
			return fmt.Errorf("%w: media binding missing media_key", ErrInvalidBinding)
		}
		if _, ok := consumerKeyNames[strings.ToLower(strings.TrimSpace(b.MediaKey))]; !ok {
			return fmt.Errorf("%w: unknown media key %q", ErrInvalidBinding, b.MediaKey)
		}
	case TypeLaunch:
		if strings.TrimSpace(b.Command) == "" {
			return fmt.Errorf("%w: launch binding missing command", ErrInvalidBinding)
		}
	case TypeShell:
		if strings.TrimSpace(b.Shell) == "" {
			return fmt.Errorf("%w: shell binding missing command", ErrInvalidBinding)
		}
	case TypeURL:
		if strings.TrimSpace(b.URL) == "" {
			return fmt.Errorf("%w: url binding missing url", ErrInvalidBinding)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, b.Action)
	}
	return nil
}

// Table is one immutable identity-to-binding lookup. Reload swaps a whole
// table, never patches one in place.
type Table struct {
	bindings map[Identity]Binding
}

// NewTable builds a table from validated bindings.
func NewTable(bindings map[Identity]Binding) *Table {
	return &Table{bindings: bindings}
}

// Resolve looks up the binding for an identity.
func (t *Table) Resolve(id Identity) (Binding, bool) {
	if t == nil {
		return Binding{}, false
	}
	b, ok := t.bindings[id]
	return b, ok
}

// Len reports the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bindings)
}

// Bindings returns a copy of the table's contents for the admin API.
func (t *Table) Bindings() map[Identity]Binding {
	out := make(map[Identity]Binding, t.Len())
	if t != nil {
		for k, v := range t.bindings {
			out[k] = v
		}
	}
	return out
}
