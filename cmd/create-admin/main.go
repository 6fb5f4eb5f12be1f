package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/classware/classman-backend/internal/config"
	"github.com/classware/classman-backend/internal/database"
	"github.com/classware/classman-backend/internal/logger"
	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/repository"
)

// Bootstrap tool: creates an admin account and grants it every permission in
// the catalog, so a fresh deployment has a working administrator before the
// HTTP API can be used to manage grants.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	permRepo := repository.NewPermissionRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	// Username
	fmt.Print("Enter Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		fmt.Println("Error: Username must be at least 3 characters")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	admin := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		UserType:     model.UserTypeAdmin,
		Status:       model.UserStatusActive,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin user")
	}

	// Grant the full catalog, self-granted and non-expiring.
	catalog, err := permRepo.ListCatalog(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load permission catalog")
	}
	for _, perm := range catalog {
		grant := &model.UserPermission{
			UserID:       admin.ID,
			PermissionID: perm.ID,
			IsActive:     true,
			GrantedBy:    admin.ID,
		}
		if err := permRepo.Grant(ctx, grant); err != nil {
			log.Fatal().Err(err).Str("permission", string(perm.Key)).Msg("Failed to grant permission")
		}
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d and %d permissions\n",
		admin.Username, admin.Email, admin.ID, len(catalog))
}
