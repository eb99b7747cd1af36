// Command seed_admin creates the first back-office account. The API has
// no self-service admin signup, so a fresh installation runs this once
// before logging in.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/clubselect/clubselect-api/internal/models"
	"github.com/clubselect/clubselect-api/internal/repository"
	"github.com/clubselect/clubselect-api/pkg/config"
	"github.com/clubselect/clubselect-api/pkg/database"
)

func main() {
	var (
		username string
		password string
		name     string
	)
	flag.StringVar(&username, "username", "", "admin username")
	flag.StringVar(&password, "password", "", "admin password")
	flag.StringVar(&name, "name", "", "display name (optional)")
	flag.Parse()

	if username == "" || password == "" {
		log.Fatal("both -username and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
	}
	if name != "" {
		admin.Name = &name
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admins := repository.NewAdminRepository(db)
	if existing, err := admins.FindByUsername(ctx, username); err == nil && existing != nil {
		log.Fatalf("admin %q already exists", username)
	}
	if err := admins.Create(ctx, admin); err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}

	log.Printf("admin %q created", username)
}
