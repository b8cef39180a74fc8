package main

import (
	"os"

	"trackmystartup/pkg/config"

	"github.com/sirupsen/logrus"
)

// usage: migrate [up|down]
func main() {
	settings := config.Load()
	config.InitLogger(settings.LogLevel)

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	// connect only; the migration below is explicit
	s := *settings
	s.DBAutoMigrate = false
	config.InitDB(&s)

	var err error
	switch direction {
	case "up":
		err = config.ExecuteMigrations(settings.MigrationsDir)
	case "down":
		err = config.RollbackMigration(settings.MigrationsDir)
	default:
		logrus.Fatalf("Unknown direction %q, expected up or down", direction)
	}
	if err != nil {
		logrus.Fatal(err)
	}
}
