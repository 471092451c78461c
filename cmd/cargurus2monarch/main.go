// cargurus2monarch exports historical vehicle price data from the CarGurus
// price-trends research API as a CSV compatible with the Monarch Money
// balance-history import format.
//
// Usage:
//
//	cargurus2monarch export --url "https://www.cargurus.com/research/price-trends/...?entityIds=c32015" --account-name "2022 Honda Civic EX-L"
//	cargurus2monarch export --entity-id c32015 --model-path Honda-Civic-Hatchback-d2441 --start-date 2025-01-01 --end-date 2025-06-30 --account-name "2022 Honda Civic EX-L"
//
// The JSESSIONID session cookie is read from CARGURUS_SESSION_COOKIE or the
// --session-cookie flag. For detailed help use: cargurus2monarch export --help
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/cargurus"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/config"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/errkind"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/logger"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/scraper"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/validate"
)

const (
	Version = "1.0.0"
	AppName = "cargurus2monarch"
)

// Exit codes following standard conventions
const (
	ExitSuccess       = 0
	ExitUsageError    = 1
	ExitConfigError   = 2
	ExitConnectionErr = 3
	ExitDataError     = 4
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(ExitUsageError)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "export":
		os.Exit(runExport(ctx, args))
	case "--version", "-v":
		fmt.Printf("%s version %s\n", AppName, Version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(ExitUsageError)
	}
}

func runExport(ctx context.Context, args []string) int {
	// Flags parse before configuration loads so that usage and --help work
	// even with a malformed environment.
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	rawURL := fs.String("url", "", "full price-trends URL (alternative to --entity-id and --model-path)")
	entityID := fs.String("entity-id", "", "entity ID, e.g. 'c32015'")
	modelPath := fs.String("model-path", "", "URL path segment, e.g. 'Honda-Civic-Hatchback-d2441'")
	startDate := fs.String("start-date", "", "start date in YYYY-MM-DD format (defaults to the earliest supported date)")
	endDate := fs.String("end-date", "", "end date in YYYY-MM-DD format (defaults to yesterday)")
	accountName := fs.String("account-name", "", "vehicle name for the CSV Account column, e.g. '2022 Honda Civic EX-L'")
	sessionCookie := fs.String("session-cookie", "", "JSESSIONID cookie value (defaults to CARGURUS_SESSION_COOKIE)")
	acceptAdjustments := fs.Bool("accept-adjustments", false, "automatically clamp out-of-range dates instead of prompting")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsageError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	if *sessionCookie == "" {
		*sessionCookie = cfg.SessionCookie
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	model, entity, urlStart, urlEnd, err := resolveVehicle(*rawURL, *entityID, *modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsageError
	}
	if *startDate == "" {
		*startDate = urlStart
	}
	if *endDate == "" {
		*endDate = urlEnd
	}

	if *accountName == "" {
		fmt.Fprintln(os.Stderr, "Error: --account-name is required")
		return ExitUsageError
	}
	if *sessionCookie == "" {
		fmt.Fprintln(os.Stderr, "Error: a session cookie is required, set CARGURUS_SESSION_COOKIE or pass --session-cookie")
		return ExitConfigError
	}

	now := time.Now()
	start, end, err := resolveRange(*startDate, *endDate, now, *acceptAdjustments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsageError
	}

	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}

	client := cargurus.NewClient(*sessionCookie,
		cargurus.WithBaseURL(cfg.BaseURL),
		cargurus.WithTimeout(cfg.HTTPTimeout),
		cargurus.WithCourtesyRate(cfg.CourtesyRate),
		cargurus.WithRetryAttempts(cfg.RetryAttempts),
		cargurus.WithLogger(log),
	)

	if err := client.HealthCheck(ctx, model, entity); err != nil {
		log.Error("session health check failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: session check failed: %v\n", err)
		return exitCodeFor(err)
	}

	s := scraper.New(client,
		scraper.WithLogger(log),
		scraper.WithOutputDir(cfg.OutputDir),
		scraper.WithLocation(loc),
	)

	path, err := s.Run(ctx, scraper.Request{
		ModelPath:   model,
		EntityID:    entity,
		AccountName: *accountName,
		Start:       start,
		End:         end,
	})
	if err != nil {
		log.Error("export failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	fmt.Printf("Successfully generated CSV file: %s\n", path)
	return ExitSuccess
}

// resolveVehicle determines the model path and entity ID from either a full
// URL or the individual flags. The two forms are mutually exclusive.
func resolveVehicle(rawURL, entityID, modelPath string) (model, entity, urlStart, urlEnd string, err error) {
	if rawURL != "" {
		if entityID != "" || modelPath != "" {
			return "", "", "", "", fmt.Errorf("cannot specify both --url and individual --entity-id/--model-path parameters")
		}
		parsed, err := cargurus.ParseTrendsURL(rawURL)
		if err != nil {
			return "", "", "", "", err
		}
		return parsed.ModelPath, parsed.EntityID, parsed.StartDate, parsed.EndDate, nil
	}

	if entityID == "" || modelPath == "" {
		return "", "", "", "", fmt.Errorf("must provide either --url or both --entity-id and --model-path")
	}
	return modelPath, entityID, "", "", nil
}

// resolveRange parses the date flags, applying defaults for missing bounds,
// and validates the range. Out-of-range dates are clamped automatically with
// --accept-adjustments, otherwise the user is prompted.
func resolveRange(startStr, endStr string, now time.Time, acceptAdjustments bool) (time.Time, time.Time, error) {
	defaultStart, defaultEnd := validate.DefaultRange(now)

	start := defaultStart
	end := defaultEnd
	var err error

	if startStr != "" {
		if start, err = validate.ParseDate(startStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		fmt.Printf("No start date provided, using earliest supported date: %s\n", start.Format(models.DateLayout))
	}
	if endStr != "" {
		if end, err = validate.ParseDate(endStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		fmt.Printf("No end date provided, using yesterday: %s\n", end.Format(models.DateLayout))
	}

	policy := validate.Policy(promptPolicy)
	if acceptAdjustments {
		policy = validate.AcceptAll
	}

	return validate.Range(start, end, now, policy)
}

// promptPolicy asks the user on stdin whether a proposed date adjustment
// should be applied.
func promptPolicy(a validate.Adjustment) bool {
	fmt.Printf("%s: %s date %s is out of range.\n",
		a.Reason, a.Field, a.Provided.Format(models.DateLayout))
	fmt.Printf("Use %s instead? (y/n): ", a.Suggested.Format(models.DateLayout))

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// exitCodeFor maps error kinds to exit codes.
func exitCodeFor(err error) int {
	switch errkind.KindOf(err) {
	case errkind.InvalidDateFormat, errkind.InvalidDateRange, errkind.InvalidArgument:
		return ExitUsageError
	case errkind.AuthenticationFailed, errkind.RateLimited, errkind.TransportFailure:
		return ExitConnectionErr
	default:
		return ExitDataError
	}
}

func printUsage() {
	fmt.Printf(`%s - export vehicle price history for Monarch Money import

USAGE:
    %s <command> [options]

COMMANDS:
    export      Fetch price history and write the import CSV
    help        Show this help message

OPTIONS (export):
    --url                 Full price-trends URL (alternative to --entity-id and --model-path)
    --entity-id           Entity ID, e.g. 'c32015'
    --model-path          URL path segment, e.g. 'Honda-Civic-Hatchback-d2441'
    --start-date          Start date (YYYY-MM-DD), defaults to the earliest supported date
    --end-date            End date (YYYY-MM-DD), defaults to yesterday
    --account-name        Vehicle name written to the CSV Account column (required)
    --session-cookie      JSESSIONID cookie value (defaults to CARGURUS_SESSION_COOKIE)
    --accept-adjustments  Clamp out-of-range dates instead of prompting

GLOBAL:
    --version, -v   Show version information
    --help, -h      Show this help message
`, AppName, AppName)
}
