// Package migrations embeds the SQL schema migrations
package migrations

import "embed"

// FS holds every *.up.sql file in version order by name
//
//go:embed *.sql
var FS embed.FS
