// seeduser creates or refreshes an operator account.
// Usage: go run ./cmd/seeduser -username owner -password secret -role owner
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/config"
	"github.com/GymAurCode/in-ven-tory/internal/infra"
	"github.com/GymAurCode/in-ven-tory/internal/model"
	"github.com/GymAurCode/in-ven-tory/internal/repository"
	"github.com/GymAurCode/in-ven-tory/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "owner", "login name")
	password := flag.String("password", "", "plain-text password (required)")
	name := flag.String("name", "Shop Owner", "display name")
	role := flag.String("role", service.RoleOwner, "owner | staff")
	flag.Parse()

	if *password == "" {
		log.Fatal().Msg("-password is required")
	}
	if *role != service.RoleOwner && *role != service.RoleStaff {
		log.Fatal().Str("role", *role).Msg("role must be owner or staff")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	user := &model.User{
		Username:     *username,
		Name:         *name,
		PasswordHash: string(hash),
		Role:         *role,
	}
	if err := repository.NewUserRepository(db).Upsert(context.Background(), user); err != nil {
		log.Fatal().Err(err).Msg("upsert failed")
	}
	log.Info().Str("username", *username).Str("role", *role).Msg("user created or updated")
}
