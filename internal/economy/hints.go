package economy

import (
	"encoding/json"
	"fmt"
)

// HintKind names one hint type. The string is the persisted key.
type HintKind string

const (
	HintRemoveTwo HintKind = "remove2"
	HintAutoPass  HintKind = "autoPass"
	HintPause     HintKind = "pause"
)

// HintKinds lists every hint kind in display order.
func HintKinds() []HintKind {
	return []HintKind{HintRemoveTwo, HintAutoPass, HintPause}
}

// ParseHintKind accepts current and legacy names.
func ParseHintKind(s string) (HintKind, error) {
	if k, ok := legacyHintKeys[s]; ok {
		return k, nil
	}
	for _, k := range HintKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownHint, s)
}

// Title returns a display label.
func (k HintKind) Title() string {
	switch k {
	case HintRemoveTwo:
		return "Remove 2"
	case HintAutoPass:
		return "Auto-pass"
	case HintPause:
		return "Pause"
	default:
		return string(k)
	}
}

// Hints is the current three-key inventory shape.
type Hints struct {
	RemoveTwo int `json:"remove2"`
	AutoPass  int `json:"autoPass"`
	Pause     int `json:"pause"`
}

// StarterHints is the inventory a new identity begins with.
func StarterHints() Hints {
	return Hints{RemoveTwo: 3, AutoPass: 1, Pause: 2}
}

// Count returns the units held of kind.
func (h Hints) Count(kind HintKind) int {
	switch kind {
	case HintRemoveTwo:
		return h.RemoveTwo
	case HintAutoPass:
		return h.AutoPass
	case HintPause:
		return h.Pause
	default:
		return 0
	}
}

// Add changes kind by delta, flooring at zero.
func (h Hints) Add(kind HintKind, delta int) (Hints, error) {
	switch kind {
	case HintRemoveTwo:
		h.RemoveTwo = max(h.RemoveTwo+delta, 0)
	case HintAutoPass:
		h.AutoPass = max(h.AutoPass+delta, 0)
	case HintPause:
		h.Pause = max(h.Pause+delta, 0)
	default:
		return h, fmt.Errorf("%w: %q", ErrUnknownHint, kind)
	}
	return h, nil
}

// Consume removes one unit of kind.
func (h Hints) Consume(kind HintKind) (Hints, error) {
	if _, err := ParseHintKind(string(kind)); err != nil {
		return h, err
	}
	if h.Count(kind) <= 0 {
		return h, ErrNoHint
	}
	return h.Add(kind, -1)
}

func (h Hints) clamp() Hints {
	h.RemoveTwo = max(h.RemoveTwo, 0)
	h.AutoPass = max(h.AutoPass, 0)
	h.Pause = max(h.Pause, 0)
	return h
}

// legacyHintKeys renames the old inventory keys.
var legacyHintKeys = map[string]HintKind{
	"fifty":      HintRemoveTwo,
	"fiftyFifty": HintRemoveTwo,
	"skip":       HintAutoPass,
	"freeze":     HintPause,
	"timeFreeze": HintPause,
}

// DecodeHints reads a stored inventory of either shape. A record without the
// "remove2" key is legacy: its keys are renamed and summed into the current
// shape, and migrated reports true so the caller can persist the new shape.
// Empty input yields the starter inventory, also flagged for persisting.
func DecodeHints(raw []byte) (Hints, bool, error) {
	if len(raw) == 0 {
		return StarterHints(), true, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return StarterHints(), true, fmt.Errorf("economy: cannot decode hints: %w", err)
	}
	if _, current := fields[string(HintRemoveTwo)]; current {
		var h Hints
		if err := json.Unmarshal(raw, &h); err != nil {
			return StarterHints(), true, fmt.Errorf("economy: cannot decode hints: %w", err)
		}
		return h.clamp(), false, nil
	}
	return migrateHints(fields), true, nil
}

func migrateHints(fields map[string]json.RawMessage) Hints {
	var h Hints
	for key, val := range fields {
		kind, ok := legacyHintKeys[key]
		if !ok {
			if kind = HintKind(key); kind != HintAutoPass && kind != HintPause {
				continue
			}
		}
		var n int
		if err := json.Unmarshal(val, &n); err != nil {
			continue
		}
		h, _ = h.Add(kind, n)
	}
	return h.clamp()
}
