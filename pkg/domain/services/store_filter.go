package services

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

// serialPattern matches text that holds a spreadsheet serial day count
var serialPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// StoreFilterRules holds the criteria a plant row must satisfy to count as an active store
type StoreFilterRules struct {
	ExcludedRegions    []string
	OrganizationNumber string
	ExcludedSites      []string
}

// DefaultStoreFilterRules returns the production store rules
func DefaultStoreFilterRules() StoreFilterRules {
	return StoreFilterRules{
		ExcludedRegions:    []string{"Canada"},
		OrganizationNumber: "9000",
		ExcludedSites:      []string{"9011"},
	}
}

// StoreFilter derives the active store set from plant records
type StoreFilter struct {
	rules    StoreFilterRules
	location *time.Location
	now      func() time.Time
}

// NewStoreFilter creates a store filter evaluated against the wall clock in loc
func NewStoreFilter(rules StoreFilterRules, loc *time.Location) *StoreFilter {
	if loc == nil {
		loc = time.Local
	}
	return &StoreFilter{
		rules:    rules,
		location: loc,
		now:      time.Now,
	}
}

// WithClock returns a copy of the filter that reads the current time from now
func (f *StoreFilter) WithClock(now func() time.Time) *StoreFilter {
	clone := *f
	clone.now = now
	return &clone
}

// ActiveStores returns the unique site numbers of active stores in first-appearance order
func (f *StoreFilter) ActiveStores(plants []entities.PlantRecord) []string {
	now := f.now()
	seen := make(map[string]struct{})
	active := make([]string, 0)

	for _, plant := range plants {
		if !f.IsActive(plant, now) {
			continue
		}
		site := strings.TrimSpace(plant.SiteNumber)
		if _, ok := seen[site]; ok {
			continue
		}
		seen[site] = struct{}{}
		active = append(active, site)
	}

	return active
}

// IsActive checks a single plant row against the rules at the given instant
func (f *StoreFilter) IsActive(plant entities.PlantRecord, now time.Time) bool {
	if slices.Contains(f.rules.ExcludedRegions, plant.Region) {
		return false
	}
	if strings.TrimSpace(plant.OrganizationNumber) != f.rules.OrganizationNumber {
		return false
	}

	openDate, ok := ParseSiteDate(plant.OpenDate, f.location)
	if !ok || !openDate.Before(now) {
		return false
	}

	// A parseable close date means the store has closed or is scheduled to
	if _, closed := ParseSiteDate(plant.CloseDate, f.location); closed {
		return false
	}

	return !slices.Contains(f.rules.ExcludedSites, strings.TrimSpace(plant.SiteNumber))
}

// spreadsheetEpoch is day zero of the spreadsheet serial date system
func spreadsheetEpoch(loc *time.Location) time.Time {
	return time.Date(1899, time.December, 30, 0, 0, 0, 0, loc)
}

// ParseSiteDate converts a plant date cell into a time in loc.
// Serial numbers and all-digit text count days from 1899-12-30; other text goes through
// general calendar parsing. The boolean is false when the cell holds no usable date.
func ParseSiteDate(cell entities.DateCell, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}

	if cell.Serial != nil {
		return serialToTime(*cell.Serial, loc), true
	}

	text := strings.TrimSpace(cell.Text)
	if text == "" {
		return time.Time{}, false
	}

	if serialPattern.MatchString(text) {
		serial, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return time.Time{}, false
		}
		return serialToTime(serial, loc), true
	}

	parsed, err := dateparse.ParseIn(text, loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func serialToTime(serial float64, loc *time.Location) time.Time {
	days := int(serial)
	fraction := serial - float64(days)
	return spreadsheetEpoch(loc).
		AddDate(0, 0, days).
		Add(time.Duration(fraction * float64(24*time.Hour)))
}
