package main

import (
	"log"

	"focussync/internal/config"
	"focussync/internal/db"
)

func main() {
	cfg := config.LoadServer()
	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	source := "embedded schema"
	if cfg.MigrationsDir != "" {
		source = cfg.MigrationsDir
	}

	applied, err := db.ApplyMigrations(database, db.Migrations(cfg.MigrationsDir))
	for _, name := range applied {
		log.Printf("applied %s", name)
	}
	if err != nil {
		log.Fatalf("migrate %s from %s: %v", cfg.DBPath, source, err)
	}

	if len(applied) == 0 {
		log.Printf("%s is up to date (%s)", cfg.DBPath, source)
		return
	}
	log.Printf("applied %d migrations to %s from %s", len(applied), cfg.DBPath, source)
}
