// Package appfs embeds the files the binaries need at runtime: database migrations and email templates.
package appfs

import "embed"

//go:embed migrations/*.sql all:assets
var FS embed.FS

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "assets/templates/email"
)
