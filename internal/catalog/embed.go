package catalog

import (
	_ "embed"
	"fmt"
)

//go:embed cards.json
var defaultSet []byte

// Default returns the built-in card set shipped with the engine. It is the
// fallback when no database or file source is configured.
func Default() []CardDefinition {
	defs, err := Parse(defaultSet)
	if err != nil {
		// The embedded set is fixed at build time.
		panic(fmt.Sprintf("embedded card set: %v", err))
	}
	return defs
}
