package input

import (
	"fmt"
	"sort"
	"strings"
)

// Chord is a normalized key combination such as "ctrl+s" or "f12"
type Chord string

// modifierOrder fixes the position of modifiers in a normalized chord
var modifierOrder = []string{"ctrl", "alt", "shift", "meta"}

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"meta":    "meta",
	"cmd":     "meta",
	"super":   "meta",
}

// ParseChord normalizes a chord written as "Ctrl+Shift+S", "F2" or "alt + c"
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	mods := make(map[string]bool)
	key := ""
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return "", fmt.Errorf("invalid key chord %q", s)
		}
		if m, ok := modifierAliases[p]; ok && i < len(parts)-1 {
			mods[m] = true
			continue
		}
		if i != len(parts)-1 {
			return "", fmt.Errorf("invalid key chord %q: %q is not a modifier", s, p)
		}
		key = p
	}
	if key == "" {
		return "", fmt.Errorf("invalid key chord %q: missing key", s)
	}
	return buildChord(mods, key), nil
}

// ChordOf returns the chord of a key event
func ChordOf(e KeyEvent) Chord {
	mods := map[string]bool{"ctrl": e.Ctrl, "alt": e.Alt, "meta": e.Meta}
	// shift is part of the character for printable keys
	if !e.isPrintable() || e.HasCommandModifier() {
		mods["shift"] = e.Shift
	}
	return buildChord(mods, strings.ToLower(e.Key))
}

func buildChord(mods map[string]bool, key string) Chord {
	var b strings.Builder
	for _, m := range modifierOrder {
		if mods[m] {
			b.WriteString(m)
			b.WriteByte('+')
		}
	}
	b.WriteString(key)
	return Chord(b.String())
}

// Keymap binds chords to intents
type Keymap map[Chord]Intent

// DefaultKeymap returns the stock bindings
func DefaultKeymap() Keymap {
	return Keymap{
		"f1":          IntentHelp,
		"f2":          IntentNewSale,
		"f3":          IntentFocusSearch,
		"f4":          IntentAddCustomer,
		"f6":          IntentApplyDiscount,
		"f8":          IntentSuspend,
		"f9":          IntentResume,
		"f12":         IntentCheckout,
		"ctrl+s":      IntentSuspend,
		"ctrl+k":      IntentFocusSearch,
		"ctrl+delete": IntentClearCart,
	}
}

// NewKeymap merges chord→intent overrides into the defaults. An override
// naming an unknown intent is rejected; the intent "none" unbinds a chord.
func NewKeymap(overrides map[string]string) (Keymap, error) {
	km := DefaultKeymap()

	chords := make([]string, 0, len(overrides))
	for chord := range overrides {
		chords = append(chords, chord)
	}
	sort.Strings(chords)

	for _, raw := range chords {
		chord, err := ParseChord(raw)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(overrides[raw])
		if strings.EqualFold(name, "none") {
			delete(km, chord)
			continue
		}
		intent, err := ParseIntent(name)
		if err != nil {
			return nil, fmt.Errorf("keymap %q: %w", raw, err)
		}
		km[chord] = intent
	}
	return km, nil
}

// ParseIntent parses an intent name, ignoring case
func ParseIntent(s string) (Intent, error) {
	for i := range intents {
		if strings.EqualFold(string(i), s) {
			return i, nil
		}
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

// Lookup returns the intent bound to chord
func (k Keymap) Lookup(chord Chord) (Intent, bool) {
	intent, ok := k[chord]
	return intent, ok
}

// Bindings returns the chords bound to each intent, for the help overlay
func (k Keymap) Bindings() map[Intent][]Chord {
	out := make(map[Intent][]Chord)
	for chord, intent := range k {
		out[intent] = append(out[intent], chord)
	}
	for intent := range out {
		sort.Slice(out[intent], func(i, j int) bool { return out[intent][i] < out[intent][j] })
	}
	return out
}
