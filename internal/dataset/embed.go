package dataset

import (
	_ "embed"
)

//go:embed data/claims.json
var embeddedDocument []byte

// Embedded builds the Store shipped with the binary.
func Embedded() (*Store, error) {
	return Parse(embeddedDocument)
}

// EmbeddedDocument returns a copy of the raw embedded JSON.
func EmbeddedDocument() []byte {
	out := make([]byte, len(embeddedDocument))
	copy(out, embeddedDocument)
	return out
}
