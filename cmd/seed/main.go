// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"gestock/internal/core/id"
	"gestock/internal/core/role"
	"gestock/internal/domain/auth"
	"gestock/internal/infrastructure/storage/postgres"
	"gestock/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	entrepriseID, err := seedEntreprise(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed entreprise", "error", err)
	}

	adminID, err := seedUsers(ctx, pool, log, entrepriseID)
	if err != nil {
		log.Fatalw("failed to seed users", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, entrepriseID, adminID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		issueDemoToken(log, secret, adminID, entrepriseID)
	}

	log.Info("seeding completed successfully")
}

func seedEntreprise(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	nom := os.Getenv("ENTREPRISE_NOM")
	if nom == "" {
		nom = "Entreprise Démo"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM entreprises WHERE nom = $1`,
		nom,
	).Scan(&existingID)
	if err == nil {
		log.Infow("entreprise already exists", "nom", nom, "entreprise_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check entreprise exists: %w", err)
	}

	entrepriseID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO entreprises (id, nom, created_at, updated_at)
		VALUES ($1, $2, now(), now())
	`, entrepriseID, nom)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert entreprise: %w", err)
	}

	log.Infow("entreprise created", "nom", nom, "entreprise_id", entrepriseID)
	return entrepriseID, nil
}

// seedUsers creates one user per role and returns the admin's id.
func seedUsers(ctx context.Context, pool *postgres.Pool, log *logger.Logger, entrepriseID id.ID) (id.ID, error) {
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "Gestock123!"
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	users := []struct {
		nom   string
		email string
		role  role.Role
	}{
		{"Admin Démo", "admin@gestock.local", role.Admin},
		{"Direction Démo", "direction@gestock.local", role.Direction},
		{"Contrôle Démo", "controle@gestock.local", role.Controle},
		{"Agence Démo", "agence@gestock.local", role.Agence},
		{"Agent Démo", "agent@gestock.local", role.Agent},
	}

	var adminID id.ID
	for _, u := range users {
		uid := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO users (id, nom, email, password_hash, role, entreprise_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			ON CONFLICT (email) DO NOTHING
		`, uid, u.nom, u.email, string(passwordHash), string(u.role), entrepriseID)
		if err != nil {
			log.Warnw("failed to seed user", "email", u.email, "error", err)
			continue
		}
		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx,
				`SELECT id FROM users WHERE email = $1`,
				u.email,
			).Scan(&uid)
			if err != nil {
				log.Warnw("failed to fetch existing user id", "email", u.email, "error", err)
				continue
			}
		}
		if u.role == role.Admin {
			adminID = uid
		}
		log.Infow("user ready", "email", u.email, "role", u.role, "user_id", uid)
	}

	if id.IsNil(adminID) {
		return id.Nil(), errors.New("admin user not available")
	}
	return adminID, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, entrepriseID, adminID id.ID) error {
	log.Info("seeding demo data...")

	// Catalogs. Map nom -> id for product references.
	seedCatalog := func(table string, rows []string) map[string]id.ID {
		ids := make(map[string]id.ID, len(rows))
		for _, nom := range rows {
			itemID := id.New()
			commandTag, err := pool.Pool.Exec(ctx, fmt.Sprintf(`
				INSERT INTO %s (id, nom, entreprise_id, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
				ON CONFLICT (entreprise_id, nom) DO NOTHING
			`, table), itemID, nom, entrepriseID)
			if err != nil {
				log.Warnw("failed to seed catalog item", "table", table, "nom", nom, "error", err)
				continue
			}
			if commandTag.RowsAffected() == 0 {
				err = pool.Pool.QueryRow(ctx, fmt.Sprintf(
					`SELECT id FROM %s WHERE entreprise_id = $1 AND nom = $2`, table,
				), entrepriseID, nom).Scan(&itemID)
				if err != nil {
					log.Warnw("failed to fetch existing catalog item", "table", table, "nom", nom, "error", err)
					continue
				}
			}
			ids[nom] = itemID
		}
		return ids
	}

	categories := seedCatalog("categories", []string{"Informatique", "Mobilier", "Fournitures"})
	marques := seedCatalog("marques", []string{"Dell", "HP", "Logitech"})
	fournisseurs := seedCatalog("fournisseurs", []string{"Sotec SARL", "Bureautique Plus"})

	products := []struct {
		nom         string
		reference   string
		prix        decimal.Decimal
		stock       int
		alerte      int
		categorie   string
		marque      string
		fournisseur string
	}{
		{"Ordinateur portable", "PC-001", decimal.NewFromInt(450000), 12, 3, "Informatique", "Dell", "Sotec SARL"},
		{"Souris sans fil", "SR-014", decimal.NewFromInt(8500), 40, 10, "Informatique", "Logitech", "Sotec SARL"},
		{"Imprimante laser", "IMP-020", decimal.NewFromInt(220000), 5, 2, "Informatique", "HP", "Sotec SARL"},
		{"Chaise de bureau", "CH-101", decimal.NewFromInt(65000), 18, 5, "Mobilier", "", "Bureautique Plus"},
		{"Ramette papier A4", "PA-200", decimal.NewFromInt(3500), 120, 30, "Fournitures", "", "Bureautique Plus"},
	}

	for _, p := range products {
		var categorieID, marqueID, fournisseurID *id.ID
		if v, ok := categories[p.categorie]; ok {
			categorieID = &v
		}
		if v, ok := marques[p.marque]; ok {
			marqueID = &v
		}
		if v, ok := fournisseurs[p.fournisseur]; ok {
			fournisseurID = &v
		}

		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO products (
				id, nom, reference, prix, quantite_stock, quantite_min_alerte,
				categorie_id, marque_id, fournisseur_id,
				entreprise_id, owner_id, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
			ON CONFLICT (entreprise_id, reference) DO NOTHING
		`, id.New(), p.nom, p.reference, p.prix, p.stock, p.alerte,
			categorieID, marqueID, fournisseurID, entrepriseID, adminID)
		if err != nil {
			log.Warnw("failed to seed product", "nom", p.nom, "error", err)
		}
	}

	log.Info("demo data seeded")
	return nil
}

func issueDemoToken(log *logger.Logger, secret string, adminID, entrepriseID id.ID) {
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(secret))
	token, expiresAt, err := jwtService.GenerateAccessToken(adminID, entrepriseID, "admin@gestock.local", role.Admin)
	if err != nil {
		log.Warnw("failed to issue demo token", "error", err)
		return
	}
	log.Infow("demo admin token issued", "token", token, "expires_at", expiresAt)
}
