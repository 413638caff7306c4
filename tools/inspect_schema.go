package main

import (
	"flag"
	"fmt"

	"github.com/localnerve/livros/internal/config"
	"github.com/localnerve/livros/internal/database"
	"github.com/rs/zerolog/log"
)

// Prints the DDL AutoMigrate produces, using a throwaway sqlite database
func main() {
	var path string
	flag.StringVar(&path, "db", ":memory:", "sqlite database file")
	flag.Parse()

	db, err := database.Connect(&config.Config{
		DBType:            "sqlite-pure",
		DBDatabase:        path,
		DBConnectionLimit: 1,
		DBLogLevel:        "silent",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open sqlite")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	type object struct {
		Type string
		Name string
		SQL  string
	}
	var objects []object
	err = db.Raw("SELECT type, name, sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY tbl_name, type DESC, name").
		Scan(&objects).Error
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read schema")
	}

	for _, o := range objects {
		fmt.Printf("\n=== %s: %s ===\n%s\n", o.Type, o.Name, o.SQL)
	}
}
