//go:build !linux

package config

// DefaultPasteKeys is the paste combination synthesized into the target.
const DefaultPasteKeys = "ctrl+v"
