package main

import (
	"context"
	"flag"
	"os"

	"github.com/Angel-Eco/CuidadoPRO/internal/bootstrap"
	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	userRepo "github.com/Angel-Eco/CuidadoPRO/internal/modules/user/repository"
	"github.com/Angel-Eco/CuidadoPRO/pkg/database"
	"github.com/Angel-Eco/CuidadoPRO/pkg/logger"
	"github.com/joho/godotenv"
)

// Creates the first administrative user. Only DATABASE_URL is required.
func main() {
	_ = godotenv.Load()

	username := flag.String("username", getEnv("SEED_ADMIN_USERNAME", "admin"), "username")
	email := flag.String("email", getEnv("SEED_ADMIN_EMAIL", "admin@cuidadopro.cl"), "email")
	fullName := flag.String("name", getEnv("SEED_ADMIN_NAME", "Administrador"), "full name")
	role := flag.String("role", entity.RoleAdmin, "admin, manager or viewer")
	flag.Parse()

	log := logger.New(getEnv("LOG_LEVEL", "info"), getEnv("APP_ENV", "development"))

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal().Msg("SEED_ADMIN_PASSWORD must be set")
	}

	db, err := database.Connect(os.Getenv("DATABASE_URL"), false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	created, err := bootstrap.SeedAdminUser(context.Background(), userRepo.NewUserRepository(db), bootstrap.AdminSeed{
		Username: *username,
		Email:    *email,
		Password: password,
		FullName: *fullName,
		Role:     *role,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed user")
	}
	if created {
		log.Info().Str("username", *username).Msg("done")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
