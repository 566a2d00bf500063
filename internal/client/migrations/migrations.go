// Package migrations embeds the goose migrations for the client's local
// SQLite database. Upgrades must stay additive so an old mirror survives an
// app update.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
