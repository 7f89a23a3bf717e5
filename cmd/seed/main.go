// seed applies the schema and inserts a verified demo user into the local
// dev database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/vineet-ld/masterdrive-api/internal/auth"
	"github.com/vineet-ld/masterdrive-api/internal/infrastructure/postgres"
)

const (
	seedEmail    = "seed@test.local"
	seedName     = "Seed User"
	seedPassword = "Abc12345!"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile("migrations/0001_init.sql")
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	hash, err := auth.NewHasher(10).Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, verified)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET modified_on = NOW()
		RETURNING id`,
		seedName, seedEmail, hash,
	).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:    %s\n", seedEmail)
	fmt.Printf("  User ID: %s\n", userID)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Printf("  curl -s -X POST http://localhost:3002/user/login \\\n")
	fmt.Printf("    -H 'Content-Type: application/json' \\\n")
	fmt.Printf("    -d '{\"email\":\"%s\",\"password\":\"%s\"}' -i\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("  # Copy the x-auth response header, then:")
	fmt.Println()
	fmt.Println("  curl -s http://localhost:3002/user/me -H 'x-auth: TOKEN'")
}
