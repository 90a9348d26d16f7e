// Package migrations embeds the world.db schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
