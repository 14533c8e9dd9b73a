package config

// DefaultPasteKeys is the paste combination synthesized into the target.
// X11 grabs cannot be released around a synthesized ctrl+v, so Linux pastes
// with shift+insert, which browsers and terminals treat as clipboard paste.
const DefaultPasteKeys = "shift+insert"
