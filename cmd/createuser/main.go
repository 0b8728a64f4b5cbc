// Command createuser provisions a portal operator account. Accounts are
// created out-of-band only; the HTTP API never registers users.
//
//	createuser -email admin@example.com -password s3cr3t [-name "Full Name"] [-force]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"dcportal/internal/auth"
	"dcportal/internal/config"
	"dcportal/internal/models"
	"dcportal/internal/store"
)

func main() {
	var (
		email    = flag.String("email", "", "account email (required)")
		password = flag.String("password", "", "account password (required)")
		name     = flag.String("name", "", "display name (defaults to the email's local part)")
		force    = flag.Bool("force", false, "overwrite an existing account")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	st, err := store.Open(cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	addr := strings.ToLower(strings.TrimSpace(*email))
	if _, err := st.FindUserByEmail(ctx, addr); err == nil && !*force {
		log.Fatalf("user with email %s already exists, use -force to overwrite", addr)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Fatalf("user lookup failed: %v", err)
	}

	displayName := *name
	if displayName == "" {
		displayName = strings.SplitN(addr, "@", 2)[0]
	}

	salt, err := auth.NewSalt()
	if err != nil {
		log.Fatalf("failed to generate salt: %v", err)
	}
	hash, err := auth.HashPassword(*password, salt)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{Email: addr, Name: displayName, Salt: salt, Hash: hash}
	if err := st.UpsertUser(ctx, user); err != nil {
		log.Fatalf("failed to save user: %v", err)
	}
	fmt.Println("Created user:", addr)
}
