// Package appfs embeds files needed at runtime: database migrations and the
// seed study document handed to brand-new users.
package appfs

import "embed"

//go:embed migrations seed.json
var FS embed.FS
