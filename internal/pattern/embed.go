package pattern

import "embed"

// builtinFS embeds the default pattern catalog.
// These ship with the binary so `bailiff review` works without a
// configured patterns directory.
//
//go:embed builtin/*.yaml
var builtinFS embed.FS
