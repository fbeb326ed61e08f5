package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"waterline/internal/config"
	"waterline/internal/database"
	"waterline/internal/database/repository"
	"waterline/internal/planner"
	"waterline/internal/prefs"
	"waterline/internal/service"
	"waterline/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	// repositories
	txRepo := repository.NewTransactionRepo(db)
	catRepo := repository.NewCategoryRepo(db)
	budgetRepo := repository.NewBudgetRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)

	// restore mirrored state from prefs files if the database is fresh
	if cats := prefs.LoadCategories(); len(cats) > 0 {
		for _, c := range cats {
			_ = catRepo.Upsert(ctx, c)
		}
	}
	if b, err := settingsRepo.Balances(ctx); err == nil && b.UpdatedAt.IsZero() {
		if mirrored := prefs.LoadBalances(); !mirrored.UpdatedAt.IsZero() {
			_ = settingsRepo.Save(ctx, mirrored)
		}
	}

	policy := planner.Policy{CapitalToEmergency: cfg.Planner.CapitalToEmergency}

	// services
	installments := &service.InstallmentService{Transactions: txRepo}
	export := &service.ExportService{Transactions: txRepo, Settings: settingsRepo, Policy: policy}
	importer := &service.ImportService{Transactions: txRepo, Categories: catRepo}
	maintenance := &service.MaintenanceService{DB: db}

	loc, err := time.LoadLocation(cfg.UI.Timezone)
	if err != nil {
		log.Printf("warn: using local timezone due to load failure: %v", err)
		loc = time.Local
	}

	p := tea.NewProgram(tui.New(ctx, cfg,
		tui.Repos{Transactions: txRepo, Categories: catRepo, Budgets: budgetRepo, Settings: settingsRepo},
		tui.Services{Installments: installments, Export: export, Import: importer, Maintenance: maintenance},
		loc,
	), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
