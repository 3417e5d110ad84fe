//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/auth"
	"github.com/hugh/go-grc/internal/database"
	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/internal/grc"
	"github.com/hugh/go-grc/pkg/config"
	"github.com/hugh/go-grc/pkg/crypto"
	"github.com/hugh/go-grc/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ctx := context.Background()

	// Create admin user
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "admin123!"
	}
	if name == "" {
		name = "Admin"
	}

	resp, err := authService.Register(ctx, auth.RegisterInput{
		Email:    email,
		Password: password,
		Name:     name,
		OrgName:  "Default Organization",
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			fmt.Printf("Admin user already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create admin user: %v", err)
	}

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		log.Fatalf("failed to create encryptor: %v", err)
	}

	svc := grc.NewService(db, logger, grc.WithSealer(encryptor))
	caller := grc.Caller{UserID: resp.User.ID}

	orgs, err := svc.ListOrganizations(ctx, caller)
	if err != nil || len(orgs) == 0 {
		log.Fatalf("failed to load seeded organization: %v", err)
	}
	orgID := orgs[0].ID

	if err := seedSampleData(ctx, svc, caller, orgID); err != nil {
		log.Fatalf("failed to seed sample data: %v", err)
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Email: %s\n", resp.User.Email)
	fmt.Printf("Organization: %s (%s)\n", orgs[0].Name, orgID)
	fmt.Printf("Token: %s\n", resp.Token)
}

func seedSampleData(ctx context.Context, svc *grc.Service, caller grc.Caller, orgID uuid.UUID) error {
	risks := []grc.CreateRiskInput{
		{Title: "Ransomware on file servers", Category: models.CategoryTechnology, Likelihood: models.LevelHigh, Impact: models.LevelVeryHigh},
		{Title: "Key supplier insolvency", Category: models.CategoryOperational, Likelihood: models.LevelLow, Impact: models.LevelHigh},
		{Title: "Late regulatory filing", Category: models.CategoryCompliance, Likelihood: models.LevelMedium, Impact: models.LevelMedium},
		{Title: "FX exposure on EUR revenue", Category: models.CategoryFinancial, Likelihood: models.LevelMedium, Impact: models.LevelLow},
	}
	var firstRisk *models.Risk
	for _, in := range risks {
		in.OrganizationID = orgID
		in.Description = in.Title
		r, err := svc.CreateRisk(ctx, caller, in)
		if err != nil {
			return fmt.Errorf("risk %q: %w", in.Title, err)
		}
		if firstRisk == nil {
			firstRisk = r
		}
	}

	nextTest := time.Now().AddDate(0, 3, 0)
	control, err := svc.CreateControl(ctx, caller, grc.CreateControlInput{
		OrganizationID: orgID,
		Title:          "Offline backups",
		Description:    "Nightly immutable backups with quarterly restore tests",
		Type:           models.ControlCorrective,
		Frequency:      models.FrequencyDaily,
		NextTestDue:    &nextTest,
	})
	if err != nil {
		return fmt.Errorf("control: %w", err)
	}
	if _, err := svc.LinkControlToRisk(ctx, caller, firstRisk.ID, grc.LinkControlInput{
		ControlID:       control.ID,
		MitigationLevel: models.MitigationHigh,
	}); err != nil {
		return fmt.Errorf("linking control: %w", err)
	}

	fw, err := svc.CreateFramework(ctx, caller, grc.CreateFrameworkInput{
		OrganizationID: orgID,
		Name:           "ISO 27001",
		Version:        "2022",
		Status:         models.FrameworkActive,
	})
	if err != nil {
		return fmt.Errorf("framework: %w", err)
	}
	for _, ref := range []string{"A.5.1", "A.5.15", "A.8.13"} {
		if _, err := svc.CreateRequirement(ctx, caller, grc.CreateRequirementInput{
			FrameworkID:   fw.ID,
			RequirementID: ref,
			Title:         "Control " + ref,
			Priority:      models.PriorityMedium,
		}); err != nil {
			return fmt.Errorf("requirement %s: %w", ref, err)
		}
	}

	if _, err := svc.CreateIntegration(ctx, caller, grc.CreateIntegrationInput{
		OrganizationID: orgID,
		Name:           "Corporate SIEM",
		Type:           models.IntegrationSIEM,
		Endpoint:       "https://siem.example.com/api",
		SyncFrequency:  models.SyncHourly,
		Config:         `{"index":"security"}`,
	}); err != nil {
		return fmt.Errorf("integration: %w", err)
	}
	return nil
}
