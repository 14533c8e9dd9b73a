package legacy

import (
	"testing"

	"golang.design/x/hotkey"
)

func TestParseHotkey(t *testing.T) {
	mods, key, err := parseHotkey("ctrl+v")
	if err != nil {
		t.Fatalf("parseHotkey: %v", err)
	}
	if key != hotkey.KeyV {
		t.Fatalf("key=%v want KeyV", key)
	}
	if len(mods) != 1 || mods[0] != modifierMap["ctrl"] {
		t.Fatalf("mods=%v want [ctrl]", mods)
	}

	if _, _, err := parseHotkey("ctrl+pause"); err == nil {
		t.Fatalf("expected unsupported key error")
	}
	if _, _, err := parseHotkey("meta+v"); err == nil {
		t.Fatalf("expected unsupported modifier error")
	}
}

func TestExpandModifiersKeepsPlainCombinationFirst(t *testing.T) {
	ctrl := modifierMap["ctrl"]
	variants := expandModifiers([]hotkey.Modifier{ctrl})
	if len(variants) == 0 || len(variants[0]) != 1 || variants[0][0] != ctrl {
		t.Fatalf("variants=%v, first must be the plain combination", variants)
	}
}
