package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/batch"
)

// renameToPeriod moves the default output next to itself under a name
// carrying the covered period.
func renameToPeriod(path string, dr batch.DateRange) (string, error) {
	target := filepath.Join(filepath.Dir(path), batch.GenerateOutputFilename("", dr))
	if target == path {
		return path, nil
	}
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", path, err)
	}
	return target, nil
}
