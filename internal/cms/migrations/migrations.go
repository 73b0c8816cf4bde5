// Package migrations embeds the schema migrations for the content
// management store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
