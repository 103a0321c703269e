// Command seed_admin provisions the first ADMIN account so the panel can be
// used against a fresh database.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/escalando-ong/cms-api/internal/models"
	"github.com/escalando-ong/cms-api/internal/repository"
	"github.com/escalando-ong/cms-api/pkg/config"
	"github.com/escalando-ong/cms-api/pkg/database"
)

func main() {
	var (
		email    string
		password string
		fullName string
	)

	flag.StringVar(&email, "email", "", "admin email address")
	flag.StringVar(&password, "password", "", "admin password")
	flag.StringVar(&fullName, "name", "Administrador", "admin display name")
	flag.Parse()

	if email == "" || password == "" {
		log.Fatal("both -email and -password are required")
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

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewUserRepository(db)

	if existing, err := repo.FindByEmail(ctx, email); err == nil {
		if err := repo.UpdatePassword(ctx, existing.ID, string(hash), time.Now().UTC()); err != nil {
			log.Fatalf("failed to update password: %v", err)
		}
		log.Printf("password updated for existing account %s", email)
		return
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         models.RoleAdmin,
	}
	if err := repo.Create(ctx, user); err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	log.Printf("admin account %s created with id %s", email, user.ID)
}
