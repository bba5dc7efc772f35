package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/rvishwa/go-storefront/app/configs"
	"github.com/rvishwa/go-storefront/app/helpers"
	"github.com/rvishwa/go-storefront/app/models"
	"github.com/rvishwa/go-storefront/app/models/migrations"
	"github.com/urfave/cli/v3"
)

func RunCli(env configs.ENV) {
	cmd := &cli.Command{
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Printf("Migration complete")
					return nil
				},
			},
			{
				Name:  "seed-admin",
				Usage: "Create an admin account from ADMIN_EMAIL / ADMIN_PASSWORD",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}

					email := os.Getenv("ADMIN_EMAIL")
					password := os.Getenv("ADMIN_PASSWORD")
					if email == "" || password == "" {
						log.Fatal().Msg("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
					}

					hash, err := helpers.HashPassword(password)
					if err != nil {
						return err
					}

					admin := &models.User{
						FullName: "Administrator",
						Email:    email,
						Password: hash,
						Role:     models.RoleAdmin,
					}
					if err := db.FirstOrCreate(admin, "email = ?", email).Error; err != nil {
						return err
					}
					log.Printf("Admin account ready: %s", email)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
