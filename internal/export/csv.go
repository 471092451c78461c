// Package export renders a filled daily price series as a CSV in the Monarch
// Money balance-history import format.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
)

// Header is the exact column header expected by the import format.
var Header = []string{"Date", "Balance", "Account"}

var (
	unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRuns      = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes an account label safe for use in a filename:
// filesystem-hostile characters become underscores, whitespace runs collapse
// to a single underscore, and leading/trailing underscores are trimmed.
// The Account column in the CSV data always carries the raw label.
func SanitizeFilename(label string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(label, "_")
	sanitized = whitespaceRuns.ReplaceAllString(sanitized, "_")
	return strings.Trim(sanitized, "_")
}

// Write renders the series to w: the header row, then one row per day with
// the balance as a fixed two-decimal string and the raw account label.
func Write(w io.Writer, series []models.PricePoint, account string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range series {
		if err := cw.Write([]string{p.Date, p.BalanceString(), account}); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", p.Date, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Filename builds the output filename {sanitized-account}_{start}_{end}.csv.
func Filename(account, startDate, endDate string) string {
	return fmt.Sprintf("%s_%s_%s.csv", SanitizeFilename(account), startDate, endDate)
}

// WriteFile writes the series to a CSV under outputDir, creating the
// directory on demand, and returns the written path.
func WriteFile(series []models.PricePoint, account, startDate, endDate, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	path := filepath.Join(outputDir, Filename(account, startDate, endDate))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, series, account); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close output file %s: %w", path, err)
	}
	return path, nil
}
