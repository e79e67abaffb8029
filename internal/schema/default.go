package schema

import (
	_ "embed"
)

// The AIMMS 1.0 shot-database descriptor ships with the binary so that
// migrate and validate work without an external descriptor file. An
// explicit --schema flag always wins.
//
//go:embed aimms-shot-db-schema.json
var defaultDescriptor []byte

// Default returns the built-in AIMMS 1.0 schema
func Default() *Schema {
	s, err := Parse(defaultDescriptor)
	if err != nil {
		// The embedded descriptor is validated by tests; a parse
		// failure here means a broken build.
		panic(err)
	}
	return s
}
