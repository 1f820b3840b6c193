// Package migrations embeds the goose migration files for the PostgreSQL
// backend.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
