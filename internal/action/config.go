package action

import (
	"fmt"
	"os"
	"strings"

	"github.com/NoobyNull/crowdisplay/internal/protocol/message"
	"github.com/pelletier/go-toml/v2"
)

// bindingEntry is one [[binding]] table in the configuration document.
// The document is produced by the external editor; the dispatcher only
// reads it.
type bindingEntry struct {
	Page     *uint8 `toml:"page"`
	Widget   *uint8 `toml:"widget"`
	Hardware string `toml:"hardware"`

	Action        string   `toml:"action"`
	Modifiers     []string `toml:"modifiers"`
	Key           string   `toml:"key"`
	MediaKey      string   `toml:"media_key"`
	Command       string   `toml:"command"`
	Class         string   `toml:"class"`
	FocusOrLaunch bool     `toml:"focus_or_launch"`
	Shell         string   `toml:"shell"`
	URL           string   `toml:"url"`
}

type bindingDoc struct {
	Bindings []bindingEntry `toml:"binding"`
}

// hardwareNames maps the document's hardware input names to identifiers.
var hardwareNames = map[string]uint8{
	"button0":       message.InputButton0,
	"button1":       message.InputButton1,
	"button2":       message.InputButton2,
	"button3":       message.InputButton3,
	"encoder_press": message.InputEncoderPress,
	"encoder_cw":    message.InputEncoderCW,
	"encoder_ccw":   message.InputEncoderCCW,
}

// LoadTable reads and validates the binding document.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("action: config load failed (%s): %w", path, err)
	}
	var doc bindingDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("action: config parse failed (%s): %w", path, err)
	}

	bindings := make(map[Identity]Binding, len(doc.Bindings))
	for i, entry := range doc.Bindings {
		id, err := entryIdentity(entry)
		if err != nil {
			return nil, fmt.Errorf("action: binding[%d]: %w", i, err)
		}
		b := Binding{
			Action:        Type(strings.TrimSpace(entry.Action)),
			Modifiers:     entry.Modifiers,
			Key:           entry.Key,
			MediaKey:      entry.MediaKey,
			Command:       entry.Command,
			Class:         entry.Class,
			FocusOrLaunch: entry.FocusOrLaunch,
			Shell:         entry.Shell,
			URL:           entry.URL,
		}
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("action: binding[%d] (%s): %w", i, id, err)
		}
		bindings[id] = b
	}
	return NewTable(bindings), nil
}

func entryIdentity(entry bindingEntry) (Identity, error) {
	if hw := strings.ToLower(strings.TrimSpace(entry.Hardware)); hw != "" {
		input, ok := hardwareNames[hw]
		if !ok {
			return Identity{}, fmt.Errorf("%w: unknown hardware input %q", ErrInvalidBinding, entry.Hardware)
		}
		return HardwareIdentity(input), nil
	}
	if entry.Page == nil || entry.Widget == nil {
		return Identity{}, fmt.Errorf("%w: needs page+widget or hardware", ErrInvalidBinding)
	}
	if *entry.Page == message.HardwarePage {
		return Identity{}, fmt.Errorf("%w: page %d is reserved for hardware inputs", ErrInvalidBinding, *entry.Page)
	}
	return Identity{Page: *entry.Page, Widget: *entry.Widget}, nil
}
