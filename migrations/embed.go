// Package migrations embeds the SQL schema so every binary can migrate a
// database without shipping the directory alongside it.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
