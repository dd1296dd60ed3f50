package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/medicare/pharmacy-api/internal/config"
	"github.com/medicare/pharmacy-api/internal/model"
	"github.com/medicare/pharmacy-api/internal/repository/postgres"
	"github.com/medicare/pharmacy-api/internal/service/patient"
	"github.com/medicare/pharmacy-api/pkg/logger"
)

var seedUsers = []struct {
	displayName string
	email       string
	password    string
	roles       []model.Role
}{
	{"System Admin", "admin@pharmacy.com", "admin123", []model.Role{model.RoleAdmin}},
	{"Dr. Ayesha Khan", "doctor@pharmacy.com", "doctor123", []model.Role{model.RoleDoctor}},
	{"Bilal Ahmed", "dispenser@pharmacy.com", "dispenser123", []model.Role{model.RoleDispenser}},
}

var seedMedicines = []struct {
	name, strength, form string
}{
	{"Paracetamol", "500mg", "Tablet"},
	{"Amoxicillin", "250mg", "Capsule"},
	{"Ibuprofen", "400mg", "Tablet"},
	{"Cetirizine", "10mg", "Tablet"},
	{"Omeprazole", "20mg", "Capsule"},
}

var ageBands = []string{"0-12", "13-18", "19-40", "41-60", "60+"}

func main() {
	patients := flag.Int("patients", 0, "number of fake patients to generate")
	flag.Parse()

	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()

	seedUserAccounts(ctx, db, log)
	seedMedicineCatalog(ctx, db, log)

	if *patients > 0 {
		seedFakePatients(ctx, db, log, *patients)
	}
}

func seedUserAccounts(ctx context.Context, db *sqlx.DB, log *logger.Logger) {
	for _, u := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), 10)
		if err != nil {
			log.Fatal(err, "failed to hash password")
		}

		id := uuid.New()
		res, err := db.ExecContext(ctx,
			`INSERT INTO users (id, display_name, email, password_hash, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (email) DO NOTHING`,
			id, u.displayName, u.email, string(hash), time.Now())
		if err != nil {
			log.Fatal(err, "failed to seed user")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			log.Info("user already exists", "email", u.email)
			continue
		}
		for _, role := range u.roles {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO user_roles (user_id, role_name) VALUES ($1, $2)`,
				id, role); err != nil {
				log.Fatal(err, "failed to seed user role")
			}
		}
		log.Info("seeded user", "email", u.email)
	}
}

func seedMedicineCatalog(ctx context.Context, db *sqlx.DB, log *logger.Logger) {
	for _, m := range seedMedicines {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO medicines (id, name, strength, form, is_active, created_at)
			 VALUES ($1, $2, $3, $4, true, $5)
			 ON CONFLICT (name, strength, form) DO NOTHING`,
			uuid.New(), m.name, m.strength, m.form, time.Now()); err != nil {
			log.Fatal(err, "failed to seed medicine")
		}
	}
	log.Info("seeded medicines", "count", len(seedMedicines))
}

// seedFakePatients generates registry entries for local development. Codes
// continue the production yearly sequence so listings look realistic.
func seedFakePatients(ctx context.Context, db *sqlx.DB, log *logger.Logger, count int) {
	now := time.Now()
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	var existing int
	if err := db.GetContext(ctx, &existing,
		`SELECT COUNT(*) FROM patients WHERE created_at >= $1`, startOfYear); err != nil {
		log.Fatal(err, "failed to count patients")
	}

	for i := 0; i < count; i++ {
		id := uuid.New()
		code := patient.FormatPatientCode(now.Year(), existing+i+1)
		cnic := fmt.Sprintf("%05d-%07d-%d",
			gofakeit.Number(10000, 99999),
			gofakeit.Number(1000000, 9999999),
			gofakeit.Number(1, 9))

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			log.Fatal(err, "failed to begin transaction")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO patients (id, patient_code, age_band, created_at)
			 VALUES ($1, $2, $3, $4)`,
			id, code, gofakeit.RandomString(ageBands), time.Now()); err != nil {
			_ = tx.Rollback()
			log.Fatal(err, "failed to seed patient")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO patient_pii (patient_id, full_name, phone, address, cnic)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, gofakeit.Name(), gofakeit.Phone(), gofakeit.Address().Address, cnic); err != nil {
			_ = tx.Rollback()
			log.Fatal(err, "failed to seed patient pii")
		}
		if err := tx.Commit(); err != nil {
			log.Fatal(err, "failed to commit patient")
		}
	}
	log.Info("seeded patients", "count", count)
}
