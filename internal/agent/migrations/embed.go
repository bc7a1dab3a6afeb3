// Package migrations embeds the SQLite schema migrations for the agent's
// local durable store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
