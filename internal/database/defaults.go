package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"waterline/internal/database/repository"
)

// SeedDefaults ensures the reserved categories and a baseline expense
// category set exist for new databases. It is idempotent and safe to run on
// every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	catRepo := repository.NewCategoryRepo(db)
	existing, err := catRepo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	defaults := []string{
		repository.CategoryIncome,
		repository.CategoryInvestment,
		"Rent",
		"Groceries",
		"Transport",
		"Utilities",
		"Health",
		"Entertainment",
		"Shopping",
	}
	for idx, name := range defaults {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("cat:"+name)).String()
		if err := catRepo.Upsert(ctx, repository.Category{ID: id, Name: name, SortOrder: idx}); err != nil {
			return err
		}
	}
	return nil
}
