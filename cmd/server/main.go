package main

import (
	"net/http"

	"github.com/spf13/viper"

	"github.com/hivecraft/patternhive/internal/api"
	"github.com/hivecraft/patternhive/internal/db"
	"github.com/hivecraft/patternhive/internal/logging"
	"github.com/hivecraft/patternhive/internal/middleware"
	"github.com/hivecraft/patternhive/internal/store"
)

func main() {
	viper.SetEnvPrefix("patternhive")
	viper.AutomaticEnv()
	viper.SetDefault("addr", ":8080")
	viper.SetDefault("env", "development")

	if viper.GetString("env") == "production" {
		logging.SetProduction()
	}
	log := logging.S()

	var st store.Store
	if path := viper.GetString("db"); path != "" {
		sqlDB, err := db.Open(path)
		if err != nil {
			log.Fatalw("open database", "path", path, "err", err)
		}
		if err := db.RunMigrations(sqlDB); err != nil {
			log.Fatalw("run migrations", "err", err)
		}
		sqliteStore, err := db.NewSQLiteStore(sqlDB)
		if err != nil {
			log.Fatalw("init sqlite store", "err", err)
		}
		st = sqliteStore
		log.Infow("using sqlite store", "path", path)
	} else {
		st = store.NewMemoryStore()
		log.Infow("using in-memory store; set PATTERNHIVE_DB for persistence")
	}

	handler := api.NewRouter(st).Handler()
	handler = middleware.RequestLogger(middleware.SecureHeaders(middleware.CORS(handler)))

	addr := viper.GetString("addr")
	log.Infow("patternhive server listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalw("server error", "err", err)
	}
}
