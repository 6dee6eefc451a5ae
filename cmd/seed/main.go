// seed creates the login user in the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ErlanBelekov/storefront-insights/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/storefront-insights/internal/usecase"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// optional, same as the server
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, export it or add it to .env")
	}

	email := getenv("SEED_EMAIL", "a@b.com")
	password := getenv("SEED_PASSWORD", "x")

	if err := postgres.RunMigrations(dbURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	hash, err := usecase.HashPassword(password)
	if err != nil {
		pool.Close()
		log.Fatalf("hash password: %v", err)
	}

	user, err := postgres.NewUserRepository(pool).Upsert(ctx, email, hash)
	pool.Close()
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	port := getenv("PORT", "8080")
	prefix := getenv("API_PREFIX", "/api/v1")
	base := "http://localhost:" + port + prefix

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:     %s\n", user.Email)
	fmt.Printf("  User ID:  %s\n", user.ID)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in and copy data.token from the response:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST %s/login \\\n", base)
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", email, password)
	fmt.Println()
	fmt.Println("  Step 2: call the protected endpoints:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	for _, path := range []string{"orders", "customers", "sales-forecast", "churn-prediction"} {
		fmt.Printf("    curl -s %s/%s -H \"Authorization: Bearer $JWT\"\n", base, path)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
