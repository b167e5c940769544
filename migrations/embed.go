// Package migrations embeds the numbered SQL migrations for the local store.
package migrations

import "embed"

//go:embed sqlite/*.sql
var FS embed.FS
