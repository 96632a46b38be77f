// Package migrations embeds the schedule schema into the binaries so the
// switcher and the daily job can migrate without SQL files on disk.
package migrations

import (
	"embed"

	"github.com/FreeMasen/robohome-switcher/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.Migrations = files
	database.MigrationsDir = "."
}
