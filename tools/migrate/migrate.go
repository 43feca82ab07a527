package main

import (
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/praxisgames/corpsim/migration"
)

func init() {
	env.RegisterDefault("PGDATABASE", "corpsim")
	env.RegisterDefault("PGHOST", "127.0.0.1")
	env.RegisterDefault("PGUSER", "postgres")
	env.RegisterDefault("PGPASSWORD", "corpsim")
}

func main() {
	if err := migration.Migration(db.DB()).Migrate(); err != nil {
		log.Fatal("database error", "action", "migration", "error", err)
	}
	db.DB().Close()
	log.Info("migration successful")
}
