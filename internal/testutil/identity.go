package testutil

import "github.com/google/uuid"

// Fixed identities for deterministic tests and golden traces.
var (
	Alice = uuid.MustParse("00000000-0000-0000-0000-00000000a11c")
	Bob   = uuid.MustParse("00000000-0000-0000-0000-000000000b0b")
	Carol = uuid.MustParse("00000000-0000-0000-0000-0000000ca201")
	Dave  = uuid.MustParse("00000000-0000-0000-0000-00000000da7e")
)
