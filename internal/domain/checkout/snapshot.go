package checkout

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecoverySnapshot is the local copy of the in-progress cart used to survive crashes
type RecoverySnapshot struct {
	CartState
	Timestamp time.Time `json:"timestamp"`
}

// NewRecoverySnapshot captures the cart at the given time
func NewRecoverySnapshot(cart *Cart, at time.Time) RecoverySnapshot {
	return RecoverySnapshot{
		CartState: cart.State(),
		Timestamp: at.UTC(),
	}
}

// Marshal encodes the snapshot as JSON
func (s RecoverySnapshot) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode recovery snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalRecoverySnapshot decodes a snapshot written by Marshal
func UnmarshalRecoverySnapshot(data []byte) (RecoverySnapshot, error) {
	var snapshot RecoverySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return RecoverySnapshot{}, fmt.Errorf("decode recovery snapshot: %w", err)
	}
	return snapshot, nil
}

// Restore converts the snapshot back into a cart
func (s RecoverySnapshot) Restore() (*Cart, error) {
	return RestoreCart(s.CartState)
}
