package action

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/NoobyNull/crowdisplay/internal/tools"
)

var ErrNoInjector = errors.New("action: no key injection tool available")

type injectTool int

const (
	toolUnprobed injectTool = iota
	toolYdotool
	toolXdotool
	toolNone
)

// KeyInjector synthesizes key chords on the host. ydotool covers the
// modern display protocol; xdotool is the legacy fallback. Absence of
// both is logged by the caller, never fatal.
type KeyInjector struct {
	runner    tools.CommandRunner
	installed func(string) bool

	mu   sync.Mutex
	tool injectTool
}

// NewKeyInjector builds an injector over a command runner.
func NewKeyInjector(runner tools.CommandRunner) *KeyInjector {
	return &KeyInjector{runner: runner, installed: tools.Installed}
}

func (k *KeyInjector) probe() injectTool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.tool == toolUnprobed {
		switch {
		case k.installed("ydotool"):
			k.tool = toolYdotool
		case k.installed("xdotool"):
			k.tool = toolXdotool
		default:
			k.tool = toolNone
		}
	}
	return k.tool
}

// PressChord synthesizes one modifier+key chord.
func (k *KeyInjector) PressChord(modifiers []string, key string) error {
	chord := strings.Join(append(append([]string{}, modifiers...), key), "+")
	return k.pressKey(chord)
}

func (k *KeyInjector) pressKey(name string) error {
	switch k.probe() {
	case toolYdotool:
		if err := k.inject("ydotool", name); err == nil {
			return nil
		}
		// ydotool present but its daemon may be down; try the legacy path
		// before giving up.
		if k.installed("xdotool") {
			return k.inject("xdotool", name)
		}
		return fmt.Errorf("%w: ydotool failed, xdotool absent", ErrNoInjector)
	case toolXdotool:
		return k.inject("xdotool", name)
	default:
		return ErrNoInjector
	}
}

func (k *KeyInjector) inject(tool, chord string) error {
	_, stderr, code, err := k.runner.Run(tool, "key", chord)
	if err != nil {
		return fmt.Errorf("action: %s key %s: exit %d: %s", tool, chord, code, strings.TrimSpace(string(stderr)))
	}
	return nil
}

// consumerKeyNames maps configured media-key names to the X keysym both
// injection tools accept.
var consumerKeyNames = map[string]string{
	"play_pause":  "XF86AudioPlay",
	"next":        "XF86AudioNext",
	"previous":    "XF86AudioPrev",
	"stop":        "XF86AudioStop",
	"mute":        "XF86AudioMute",
	"volume_up":   "XF86AudioRaiseVolume",
	"volume_down": "XF86AudioLowerVolume",
}

// consumerKeyCodes maps legacy wire consumer-control codes to the same
// key names. The layout is frozen; it mirrors the original firmware's
// fixed table.
var consumerKeyCodes = map[uint8]string{
	0xCD: "play_pause",
	0xB5: "next",
	0xB6: "previous",
	0xB7: "stop",
	0xE2: "mute",
	0xE9: "volume_up",
	0xEA: "volume_down",
}

// ConsumerKey synthesizes a media key press by configured name.
func (k *KeyInjector) ConsumerKey(name string) error {
	keysym, ok := consumerKeyNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("%w: media key %q", ErrInvalidBinding, name)
	}
	return k.pressKey(keysym)
}

// ConsumerKeyCode synthesizes a media key press from a legacy wire code.
func (k *KeyInjector) ConsumerKeyCode(code uint8) error {
	name, ok := consumerKeyCodes[code]
	if !ok {
		return fmt.Errorf("%w: consumer code 0x%02X", ErrInvalidBinding, code)
	}
	return k.ConsumerKey(name)
}

// legacyModifierNames decodes the legacy keystroke modifier bitmask.
var legacyModifierNames = []struct {
	bit  uint8
	name string
}{
	{0x01, "ctrl"},
	{0x02, "shift"},
	{0x04, "alt"},
	{0x08, "super"},
}

// LegacyChord synthesizes a chord from the legacy keystroke wire format:
// modifier bitmask plus printable key byte.
func (k *KeyInjector) LegacyChord(modifiers uint8, key uint8) error {
	var mods []string
	for _, m := range legacyModifierNames {
		if modifiers&m.bit != 0 {
			mods = append(mods, m.name)
		}
	}
	return k.PressChord(mods, string(rune(key)))
}
