// Package input turns the terminal's raw key events into checkout intents and
// barcode lookups.
package input

import (
	"strings"
	"time"
	"unicode/utf8"
)

// FocusTarget identifies the UI element that held focus when a key was pressed
type FocusTarget string

const (
	FocusNone   FocusTarget = ""
	FocusScan   FocusTarget = "scan"
	FocusSearch FocusTarget = "search"
	// FocusText is any other free-text field (notes, customer name, amounts)
	FocusText FocusTarget = "text"
)

// IsFreeText reports whether single-key shortcuts must leave the field alone
func (f FocusTarget) IsFreeText() bool {
	return f == FocusText
}

// acceptsScan reports whether digits typed here may be a scanner burst
func (f FocusTarget) acceptsScan() bool {
	return f != FocusText
}

// KeyEvent is one key press as reported by the UI shell
type KeyEvent struct {
	Key   string      `json:"key"`
	Ctrl  bool        `json:"ctrl"`
	Alt   bool        `json:"alt"`
	Shift bool        `json:"shift"`
	Meta  bool        `json:"meta"`
	Focus FocusTarget `json:"focus"`
	// Value is the focused field's text after the key, used for search-as-you-type
	Value string    `json:"value"`
	At    time.Time `json:"at"`
}

// HasCommandModifier reports whether Ctrl, Alt or Meta is held. Shift alone
// only changes the character.
func (e KeyEvent) HasCommandModifier() bool {
	return e.Ctrl || e.Alt || e.Meta
}

// IsEnter reports whether the key is the accept key
func (e KeyEvent) IsEnter() bool {
	return strings.EqualFold(e.Key, "enter")
}

// Digit returns the digit the key types, if it is a single digit
func (e KeyEvent) Digit() (byte, bool) {
	if len(e.Key) != 1 || e.HasCommandModifier() {
		return 0, false
	}
	c := e.Key[0]
	return c, c >= '0' && c <= '9'
}

// isPrintable reports whether the key types a single character
func (e KeyEvent) isPrintable() bool {
	return utf8.RuneCountInString(e.Key) == 1 && !e.HasCommandModifier()
}

// Intent is a high-level action the operator asked for
type Intent string

const (
	IntentNewSale       Intent = "newSale"
	IntentSuspend       Intent = "suspend"
	IntentResume        Intent = "resume"
	IntentCheckout      Intent = "checkout"
	IntentAddCustomer   Intent = "addCustomer"
	IntentApplyDiscount Intent = "applyDiscount"
	IntentFocusSearch   Intent = "focusSearch"
	IntentClearCart     Intent = "clearCart"
	IntentHelp          Intent = "help"
)

var intents = map[Intent]bool{
	IntentNewSale:       true,
	IntentSuspend:       true,
	IntentResume:        true,
	IntentCheckout:      true,
	IntentAddCustomer:   true,
	IntentApplyDiscount: true,
	IntentFocusSearch:   true,
	IntentClearCart:     true,
	IntentHelp:          true,
}

// IsValid checks if the intent is known
func (i Intent) IsValid() bool {
	return intents[i]
}

// String returns the string representation of Intent
func (i Intent) String() string {
	return string(i)
}
