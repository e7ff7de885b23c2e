package input

import "github.com/NoobyNull/crowdisplay/internal/protocol/message"

// Event is one discrete, debounced input: a button press or a single
// encoder detent. Releases are never reported.
type Event struct {
	// Input is the hardware input identifier from the shared identity
	// space (message.InputButton0..InputEncoderCCW).
	Input uint8
	// Delta is +1 or -1 for encoder rotation, 0 for buttons.
	Delta int8
}

// Message converts the event to its wire form.
func (e Event) Message() message.HardwareInput {
	return message.HardwareInput{Input: e.Input, Delta: e.Delta}
}

// PinMap locates each input in the expander's 16-bit register.
type PinMap struct {
	ButtonBits      [4]uint8
	EncoderPressBit uint8
	EncoderClockBit uint8
	EncoderDataBit  uint8
}

// DefaultPinMap matches the display unit's board wiring.
func DefaultPinMap() PinMap {
	return PinMap{
		ButtonBits:      [4]uint8{0, 1, 2, 3},
		EncoderPressBit: 4,
		EncoderClockBit: 5,
		EncoderDataBit:  6,
	}
}
