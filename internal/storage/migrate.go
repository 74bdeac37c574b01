// ABOUTME: Data migration between activity storage backends.
// ABOUTME: Copies workouts, samples, and routes from source to destination.

package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/harperreed/pace/internal/query"
)

// MigrateData copies all data from src to dst storage.
// The destination should be empty before calling this function.
func MigrateData(ctx context.Context, src query.Source, dst Writer) (*ImportSummary, error) {
	data, err := Dump(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	summary, err := Load(ctx, dst, data)
	if err != nil {
		return summary, fmt.Errorf("write destination: %w", err)
	}
	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
