// Command seed creates the initial Admin user so the dashboard can be
// logged into on a fresh deployment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/auth"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/config"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/crypto"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
	"github.com/Cachefy/Cachefy-Server-sub000/internal/store"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password (min 8 characters)")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -email admin@example.com -password <password>")
		os.Exit(1)
	}
	if len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "password must be at least 8 characters")
		os.Exit(1)
	}

	cfg := config.Load()
	if cfg.MongoURI == "" {
		fmt.Fprintln(os.Stderr, "MONGO_URI must be set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoStore, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mongodb connection failed: %v\n", err)
		os.Exit(1)
	}
	defer mongoStore.Close(ctx)

	existing, err := mongoStore.GetUserByEmail(ctx, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "user lookup failed: %v\n", err)
		os.Exit(1)
	}
	if existing != nil {
		fmt.Printf("user %s already exists (id %s)\n", *email, existing.ID)
		return
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "password hashing failed: %v\n", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           crypto.NewID(),
		Email:        *email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := mongoStore.CreateUser(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "user create failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created admin user %s (id %s)\n", user.Email, user.ID)
}
