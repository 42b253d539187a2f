package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/profilehub/profilehub/config"
	"github.com/profilehub/profilehub/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@profilehub.dev"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO accounts (email, password_hash, provider)
		VALUES ($1, $2, 'email')
		ON CONFLICT (email) DO UPDATE SET updated_at = now()
		RETURNING id
	`, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed account: %v", err)
	}
	fmt.Printf("seeded account: id=%s email=%s password=%s\n", id, email, password)

	if _, err := db.Exec(`
		INSERT INTO profiles (user_id, email, username, first_name, bio)
		VALUES ($1, $2, 'demo', 'Demo', 'Seeded demo profile')
		ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, updated_at = now()
	`, id, email); err != nil {
		log.Fatalf("failed to seed profile: %v", err)
	}
	fmt.Println("seeded demo profile")
}
