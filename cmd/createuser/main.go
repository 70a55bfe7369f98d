package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/velmuzhov/photosite/internal/config"
	"github.com/velmuzhov/photosite/internal/domain/user"
	"github.com/velmuzhov/photosite/internal/pkg/database"
	"github.com/velmuzhov/photosite/internal/pkg/password"
)

// Operator accounts are created with this tool, never through the API.
func main() {
	username := flag.String("username", "", "username for the new account")
	pass := flag.String("password", "", "password for the new account")
	flag.Parse()

	log.Logger = log.Output(zerolog.NewConsoleWriter())

	if *username == "" || *pass == "" {
		log.Fatal().Msg("Both -username and -password are required")
	}

	cfg := config.Load()

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	hash, err := password.Hash(*pass)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	u, err := user.NewRepository(db).Create(ctx, *username, hash)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			log.Fatal().Str("username", *username).Msg("Username already taken")
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	log.Info().Int64("id", u.ID).Str("username", u.Username).Msg("User created")
}
