// Package migrations embeds the SQL migrations applied by storage.Migrate,
// cmd/migrator and sitectl.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
