package compiler

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/lhaig/nu/internal/backend"
	"github.com/lhaig/nu/internal/logger"
)

// Unit is one independent source file to convert.
type Unit struct {
	Name   string // path or label used in diagnostics
	Source string
	Target string
}

// UnitResult is the outcome for one Unit. Err holds that unit's failure only.
type UnitResult struct {
	Unit   Unit
	Result *Result
	Err    error
}

// LoadUnits reads each path from disk into a Unit for target.
func LoadUnits(paths []string, target string) ([]Unit, error) {
	units := make([]Unit, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		units = append(units, Unit{Name: path, Source: string(data), Target: target})
	}
	return units, nil
}

// ConvertAll converts units concurrently, at most limit at a time (no bound
// when limit <= 0). Results keep the order of units. A failing unit does not
// stop the others; the returned error is set only when ctx is cancelled.
func ConvertAll(ctx context.Context, units []Unit, cfg backend.Config, limit int) ([]UnitResult, error) {
	results := make([]UnitResult, len(units))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, u := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = UnitResult{Unit: u, Err: err}
				return err
			}
			logger.LogFileProcessing(u.Name)
			res, err := convert(u.Name, u.Source, u.Target, cfg)
			results[i] = UnitResult{Unit: u, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, nil
}
