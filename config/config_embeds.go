package config

import _ "embed"

// GitIgnore is written by `config migrate` when the project has no .gitignore.
//
//go:embed .gitignore
var GitIgnore string
