package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"consultation-service/internal/app/config"
	"consultation-service/internal/app/drivers/database"

	migrate "github.com/rubenv/sql-migrate"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of applying pending ones")
	flag.Parse()

	driverConfig, err := config.NewDriverConfig()
	if err != nil {
		log.Fatalf("Error loading driver config: %v", err)
	}
	internalConfig, err := config.NewInternalConfig()
	if err != nil {
		log.Fatalf("Error loading internal config: %v", err)
	}

	db := database.NewPostgresDB(driverConfig)
	defer db.Close()

	dir := internalConfig.App.MigrationDir
	if !filepath.IsAbs(dir) {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatalf("Error getting working directory: %v", err)
		}
		dir = filepath.Join(wd, dir)
	}

	migrations := &migrate.FileMigrationSource{Dir: dir}

	direction, limit := migrate.Up, 0
	if *down {
		direction, limit = migrate.Down, 1
	}

	n, err := migrate.ExecMax(db, "postgres", migrations, direction, limit)
	if err != nil {
		log.Fatalf("Error executing migration: %v", err)
	}

	log.Printf("Applied %d migrations!\n", n)
}
