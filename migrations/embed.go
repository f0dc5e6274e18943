// Package migrations holds the database schema applied at service start.
package migrations

import "embed"

// Files contains every *.sql migration in this directory
//
//go:embed *.sql
var Files embed.FS
