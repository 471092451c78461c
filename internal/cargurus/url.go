package cargurus

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/errkind"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
)

// TrendsURL holds the parameters decomposed from a price-trends URL.
type TrendsURL struct {
	// ModelPath is the trailing path segment identifying the model page.
	ModelPath string

	// EntityID identifies the tracked vehicle.
	EntityID string

	// StartDate and EndDate are optional YYYY-MM-DD strings decoded from
	// epoch-millisecond query parameters. Empty when absent or unparseable.
	StartDate string
	EndDate   string
}

// ParseTrendsURL decomposes a price-trends URL into its model path, entity ID
// and optional date bounds. Shell-escaped query separators (as produced by
// copy-pasting from some shells) are cleaned before parsing.
func ParseTrendsURL(raw string) (*TrendsURL, error) {
	const op = "cargurus.ParseTrendsURL"

	cleaned := strings.NewReplacer(`\?`, "?", `\=`, "=", `\&`, "&").Replace(raw)

	parsed, err := url.Parse(cleaned)
	if err != nil {
		return nil, errkind.Wrap(errkind.InvalidArgument, op, err)
	}

	segments := strings.Split(parsed.Path, "/")
	if len(segments) < 3 || !containsSegment(segments, "price-trends") {
		return nil, errkind.New(errkind.InvalidArgument, op,
			"must be a price-trends URL")
	}

	query := parsed.Query()
	entityID := query.Get("entityIds")
	if entityID == "" {
		return nil, errkind.New(errkind.InvalidArgument, op,
			"missing entityIds parameter")
	}
	// Pages tracking several vehicles list comma-separated ids; only the
	// first is fetched.
	entityID, _, _ = strings.Cut(entityID, ",")

	return &TrendsURL{
		ModelPath: segments[len(segments)-1],
		EntityID:  entityID,
		StartDate: dateFromMillisParam(query.Get("startDate")),
		EndDate:   dateFromMillisParam(query.Get("endDate")),
	}, nil
}

// dateFromMillisParam decodes an epoch-millisecond query value to a calendar
// date, or returns "" for absent or invalid values.
func dateFromMillisParam(v string) string {
	if v == "" {
		return ""
	}
	millis, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return ""
	}
	return time.UnixMilli(millis).UTC().Format(models.DateLayout)
}

func containsSegment(segments []string, want string) bool {
	for _, s := range segments {
		if s == want {
			return true
		}
	}
	return false
}
