package eventbus

// Kind identifies one of the fixed set of events carried by the bus.
type Kind uint8

const (
	KindKeyDown Kind = iota
	KindTextInput
	KindMouseDown
	KindMouseUp
	KindMouseWheel
	KindMouseMotion
	KindResize
	KindSubmit

	kindCount
)

var kindNames = [kindCount]string{
	"key_down", "text_input", "mouse_down", "mouse_up",
	"mouse_wheel", "mouse_motion", "resize", "submit",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// Event is implemented by every event type. The set is closed: Kind
// values outside the constants above are never emitted.
type Event interface {
	Kind() Kind
}

// Mod is a bit set of keyboard modifiers.
type Mod uint8

const (
	ModShift Mod = 1 << iota
	ModCtrl
	ModAlt
)

// KeyDown is a key press with its symbol ("enter", "up", "a", ...).
type KeyDown struct {
	Sym string
	Mod Mod
}

// Stroke renders the key as "ctrl+shift+a" style text, used as a keymap
// lookup key.
func (k KeyDown) Stroke() string {
	s := ""
	if k.Mod&ModCtrl != 0 {
		s += "ctrl+"
	}
	if k.Mod&ModAlt != 0 {
		s += "alt+"
	}
	if k.Mod&ModShift != 0 {
		s += "shift+"
	}
	return s + k.Sym
}

// TextInput carries decoded text typed or pasted by the user.
type TextInput struct {
	Text string
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
)

// MouseDown is a button press. Clicks counts consecutive clicks.
type MouseDown struct {
	X, Y   int
	Button MouseButton
	Clicks int
}

// MouseUp is a button release.
type MouseUp struct {
	X, Y   int
	Button MouseButton
}

// MouseWheel is a wheel step; positive DY scrolls up (towards older text).
type MouseWheel struct {
	X, Y int
	DY   int
}

// MouseMotion is pointer movement.
type MouseMotion struct {
	X, Y int
}

// Resize reports the new drawing-area size.
type Resize struct {
	Width, Height int
}

// Submit carries a command line entered at the prompt.
type Submit struct {
	Command string
}

func (KeyDown) Kind() Kind     { return KindKeyDown }
func (TextInput) Kind() Kind   { return KindTextInput }
func (MouseDown) Kind() Kind   { return KindMouseDown }
func (MouseUp) Kind() Kind     { return KindMouseUp }
func (MouseWheel) Kind() Kind  { return KindMouseWheel }
func (MouseMotion) Kind() Kind { return KindMouseMotion }
func (Resize) Kind() Kind      { return KindResize }
func (Submit) Kind() Kind      { return KindSubmit }
