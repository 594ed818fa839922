// Package migrations embeds the SQL schema migrations so the server binary
// can bring the database up to date at startup.
package migrations

import "embed"

//go:embed postgres/*.sql
var FS embed.FS
