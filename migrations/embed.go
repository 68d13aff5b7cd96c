// Package migrations embeds the SQL schema applied by "dossiers-server migrate up".
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
