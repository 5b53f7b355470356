// Seeding tool for a fresh environment: creates the compliance staff accounts
// needed for the two-signature approval and installs an initial active
// scoring configuration.
//
// Usage (env overrides):
//
//	SEED_OFFICER_EMAIL=officer@lender.example SEED_OFFICER_PASSWORD=Password123
//
// Reads DATABASE_URL and other core config via onboard/pkg/config.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"onboard/internal/domain"
	"onboard/internal/repository/postgres"
	"onboard/internal/riskconfig"
	"onboard/pkg/config"
	"onboard/pkg/errors"
	"onboard/pkg/logger"
)

func main() {
	log := logger.New("seed-compliance")

	cfg := config.Load()
	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	configRepo := postgres.NewScoringConfigRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	ctx := context.Background()

	ensureUser(ctx, userRepo, log,
		getenv("SEED_OFFICER_EMAIL", "officer@lender.example"),
		getenv("SEED_OFFICER_PASSWORD", "Password123"),
		domain.RoleComplianceOfficer,
	)
	ensureUser(ctx, userRepo, log,
		getenv("SEED_EXECUTIVE_EMAIL", "executive@lender.example"),
		getenv("SEED_EXECUTIVE_PASSWORD", "Password123"),
		domain.RoleExecutive,
	)

	ensureScoringConfig(ctx, configRepo, log, getenv("SEED_CONFIG_VERSION", "v1"))

	// Demo clients for exercising the onboarding flow end to end. Fixed IDs
	// keep the seed idempotent.
	ensureClient(ctx, clientRepo, log, &domain.Client{
		ID:                    uuid.MustParse("6f1f6f60-0000-4000-8000-000000000001"),
		FullName:              "Chipo Banda",
		DateOfBirth:           time.Date(1994, 3, 12, 0, 0, 0, 0, time.UTC),
		Province:              "Lusaka",
		EmployerName:          "Zambeef Products",
		SourceOfFunds:         "Salary",
		DeclaredMonthlyIncome: decimal.NewFromInt(18000),
	})
	ensureClient(ctx, clientRepo, log, &domain.Client{
		ID:                    uuid.MustParse("6f1f6f60-0000-4000-8000-000000000002"),
		FullName:              "Joseph Phiri",
		DateOfBirth:           time.Date(1968, 11, 2, 0, 0, 0, 0, time.UTC),
		Province:              "Copperbelt",
		SourceOfFunds:         "Business",
		DeclaredMonthlyIncome: decimal.NewFromInt(2500),
	})

	fmt.Println("OK: staff users, scoring configuration and demo clients seeded")
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func ensureUser(ctx context.Context, repo *postgres.UserRepository, log logger.Logger, email, password, role string) {
	_, err := repo.FindByEmail(ctx, email)
	if err == nil {
		log.Info("User already exists", map[string]interface{}{"email": email})
		return
	}
	if !stderrors.Is(err, errors.ErrUserNotFound) {
		log.Fatal("FindByEmail failed", map[string]interface{}{"error": err.Error()})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password", map[string]interface{}{"error": err.Error()})
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(ctx, user); err != nil {
		log.Fatal("Failed to create user", map[string]interface{}{"email": email, "error": err.Error()})
	}
	log.Info("Created user", map[string]interface{}{"email": email, "role": role})
}

func ensureClient(ctx context.Context, repo *postgres.ClientRepository, log logger.Logger, client *domain.Client) {
	if _, err := repo.FindByID(ctx, client.ID); err == nil {
		log.Info("Client already exists", map[string]interface{}{"full_name": client.FullName})
		return
	} else if !stderrors.Is(err, errors.ErrClientNotFound) {
		log.Fatal("FindByID failed", map[string]interface{}{"error": err.Error()})
	}

	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now
	if err := repo.Create(ctx, client); err != nil {
		log.Fatal("Failed to create client", map[string]interface{}{"full_name": client.FullName, "error": err.Error()})
	}
	log.Info("Created client", map[string]interface{}{"full_name": client.FullName})
}

func ensureScoringConfig(ctx context.Context, repo *postgres.ScoringConfigRepository, log logger.Logger, version string) {
	if _, err := repo.FindByVersion(ctx, version); err == nil {
		log.Info("Scoring config version already exists", map[string]interface{}{"version": version})
		return
	} else if !stderrors.Is(err, errors.ErrNoActiveConfig) {
		log.Fatal("FindByVersion failed", map[string]interface{}{"error": err.Error()})
	}

	cfg := defaultScoringConfig(version)
	cfg.Checksum = riskconfig.Checksum(cfg)

	if err := repo.CreateVersion(ctx, cfg, "seed"); err != nil {
		log.Fatal("Failed to create scoring config", map[string]interface{}{"error": err.Error()})
	}
	if err := repo.ActivateVersion(ctx, version); err != nil {
		log.Fatal("Failed to activate scoring config", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Installed scoring config", map[string]interface{}{
		"version":  version,
		"checksum": cfg.Checksum,
	})
}

// defaultScoringConfig is the baseline rule set. Compliance staff version it
// further through the API once the service is running.
func defaultScoringConfig(version string) *domain.ScoringConfig {
	return &domain.ScoringConfig{
		Version:  version,
		MaxScore: 100,
		Rules: []domain.RiskRule{
			{Name: "SanctionsHit", Condition: "HasSanctionsHit == true", Category: "Aml", Priority: 1, Points: 80, Enabled: true},
			{Name: "PepFlag", Condition: "IsPep == true", Category: "Aml", Priority: 2, Points: 50, Enabled: true},
			{Name: "EddEscalated", Condition: "RequiresEdd == true", Category: "Kyc", Priority: 3, Points: 30, Enabled: true},
			{Name: "IncompleteDocuments", Condition: "HasAllDocuments == false", Category: "Kyc", Priority: 4, Points: 15, Enabled: true},
			{Name: "YoungApplicant", Condition: "ClientAge < 21", Category: "Profile", Priority: 5, Points: 10, Enabled: true},
			{Name: "NoEmployer", Condition: "HasEmployer == false", Category: "Profile", Priority: 6, Points: 10, Enabled: true},
			{Name: "LowDeclaredIncome", Condition: "DeclaredMonthlyIncome < 3000", Category: "Profile", Priority: 7, Points: 10, Enabled: true},
		},
		Thresholds: []domain.RatingThreshold{
			{Min: 0, Max: 25, Rating: domain.RiskRatingLow},
			{Min: 26, Max: 50, Rating: domain.RiskRatingMedium},
			{Min: 51, Max: 100, Rating: domain.RiskRatingHigh},
		},
	}
}
