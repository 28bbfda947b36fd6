package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/user/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Solicitud{},
		&entity.Profesional{},
	)
}

// AdminSeed describes the first administrative user.
type AdminSeed struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

// SeedAdminUser creates the user unless one with the same username or email
// already exists. It reports whether a user was created.
func SeedAdminUser(ctx context.Context, users repository.UserRepository, seed AdminSeed, log zerolog.Logger) (bool, error) {
	if seed.Username == "" || seed.Email == "" {
		return false, errors.New("username and email are required")
	}
	if len(seed.Password) < minPasswordLen {
		return false, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if seed.Role == "" {
		seed.Role = entity.RoleAdmin
	}
	if !isRole(seed.Role) {
		return false, fmt.Errorf("unknown role %q", seed.Role)
	}

	exists, err := users.ExistsByUsernameOrEmail(ctx, seed.Username, seed.Email)
	if err != nil {
		return false, err
	}
	if exists {
		log.Info().Str("username", seed.Username).Msg("user already exists, skipping seed")
		return false, nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	fullName := seed.FullName
	if fullName == "" {
		fullName = "Administrador"
	}

	user := &entity.User{
		Username:     seed.Username,
		Email:        seed.Email,
		PasswordHash: string(hashedPasswordBytes),
		FullName:     fullName,
		Role:         seed.Role,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		return false, err
	}

	log.Info().Str("username", user.Username).Str("role", user.Role).Msg("user seeded")
	return true, nil
}

func isRole(role string) bool {
	for _, r := range entity.Roles {
		if r == role {
			return true
		}
	}
	return false
}
