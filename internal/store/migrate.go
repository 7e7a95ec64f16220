package store

import (
	"context"
	"strings"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/google/uuid"
)

// MigrationReport summarizes a Migrate run.
type MigrationReport struct {
	Read           int
	Imported       int
	SkippedNoName  int
	SkippedByName  int
	AssignedNewIDs int
}

// Migrate appends the items of src to dst, skipping nameless entries and
// names dst already holds. Missing or colliding ids get a fresh UUID;
// AssignedNewIDs counts those among the imported items. With dryRun set dst
// is only read.
func Migrate(ctx context.Context, src, dst HistoryStore, dryRun bool) (MigrationReport, error) {
	var report MigrationReport

	incoming, err := src.Load(ctx)
	if err != nil {
		return report, err
	}
	report.Read = len(incoming)

	existing, err := dst.Load(ctx)
	if err != nil {
		return report, err
	}

	ids := make(map[string]struct{}, len(existing)+len(incoming))
	for _, item := range existing {
		ids[item.ID] = struct{}{}
	}

	reassigned := make(map[string]struct{})
	cleaned := make([]domain.ResultItem, 0, len(incoming))
	for _, item := range incoming {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			report.SkippedNoName++
			continue
		}
		if _, taken := ids[item.ID]; item.ID == "" || taken {
			item.ID = uuid.NewString()
			reassigned[item.ID] = struct{}{}
		}
		ids[item.ID] = struct{}{}
		cleaned = append(cleaned, item)
	}

	unique := domain.UniqueByName(existing, cleaned)
	report.SkippedByName = len(cleaned) - len(unique)
	report.Imported = len(unique)
	for _, item := range unique {
		if _, ok := reassigned[item.ID]; ok {
			report.AssignedNewIDs++
		}
	}

	if dryRun || len(unique) == 0 {
		return report, nil
	}
	if err := dst.Append(ctx, unique); err != nil {
		return report, err
	}
	return report, nil
}
