package main

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/rvishwa/go-storefront/app/cmd"
	"github.com/rvishwa/go-storefront/app/configs"
	"github.com/rvishwa/go-storefront/app/routes"
)

func main() {
	env := configs.LoadEnv()

	if len(os.Args) > 1 {
		cmd.RunCli(env)
		return
	}

	if env.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := configs.OpenConnection(env)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	log.Printf("Database connected.")

	router := routes.NewRouter(db, env)

	server := http.Server{
		Addr:    env.Port,
		Handler: router,
	}

	log.Printf("Server starting on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
