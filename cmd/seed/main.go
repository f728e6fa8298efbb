package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/txgate/txgate/domain"
	"github.com/txgate/txgate/domain/entity"
	"github.com/txgate/txgate/infrastructure/persistence/postgres"
	"github.com/txgate/txgate/infrastructure/service/password"
)

// Seeds the baseline provisioning: profiles, the TX mapping, the grants
// backing them, and an admin user. Everything is upsert-style so the seed
// can be re-run.
func main() {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err := seed(ctx, db, adminPassword); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	log.Println("Database seeded successfully")
}

func seed(ctx context.Context, db *sql.DB, adminPassword string) error {
	profiles := map[string]int64{
		"public": 1,
		"admin":  2,
	}
	for name, id := range profiles {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO profiles (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, id, name); err != nil {
			return err
		}
	}

	mappings := []domain.TransactionDescriptor{
		{TXCode: 1001, ObjectName: "Auth", MethodName: "login"},
		{TXCode: 1002, ObjectName: "Auth", MethodName: "me"},
	}
	for _, m := range mappings {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO tx_mappings (tx_code, object_name, method_name)
			VALUES ($1, $2, $3)
			ON CONFLICT (tx_code) DO NOTHING
		`, m.TXCode, m.ObjectName, m.MethodName); err != nil {
			return err
		}
	}

	store := postgres.NewPermissionStore(db)
	grants := []domain.PermissionGrant{
		{ProfileID: profiles["public"], ObjectName: "Auth", MethodName: "login"},
		{ProfileID: profiles["admin"], ObjectName: "Auth", MethodName: "login"},
		{ProfileID: profiles["admin"], ObjectName: "Auth", MethodName: "me"},
		{ProfileID: profiles["admin"], ObjectName: "Permissions", MethodName: "manage"},
	}
	for _, g := range grants {
		if _, err := store.InsertGrant(ctx, g); err != nil {
			return err
		}
	}

	passwordService := password.NewBcryptPasswordService(0)
	hashed, err := passwordService.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := entity.NewUser("admin", "admin@localhost", hashed, profiles["admin"])
	if _, err := db.ExecContext(ctx, `
		INSERT INTO users (username, email, password, profile_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (username) DO NOTHING
	`, admin.Username, admin.Email, admin.Password, admin.ProfileID, admin.Status, admin.CreatedAt, admin.UpdatedAt); err != nil {
		return err
	}

	return nil
}
