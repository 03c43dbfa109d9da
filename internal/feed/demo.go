package feed

import (
	_ "embed"
)

//go:embed demo.json
var demoJSON []byte

// DemoData returns a copy of the embedded demo snapshot.
func DemoData() []byte {
	out := make([]byte, len(demoJSON))
	copy(out, demoJSON)
	return out
}
