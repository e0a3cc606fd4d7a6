package services

import (
	"reflect"
	"testing"
	"time"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

func TestParseSiteDate(t *testing.T) {
	utc := time.UTC

	tests := []struct {
		name     string
		cell     entities.DateCell
		expected time.Time
		ok       bool
	}{
		{"serial_epoch", entities.SerialDate(0), time.Date(1899, 12, 30, 0, 0, 0, 0, utc), true},
		{"serial_day_one", entities.SerialDate(1), time.Date(1899, 12, 31, 0, 0, 0, 0, utc), true},
		{"serial_2023", entities.SerialDate(45000), time.Date(2023, 3, 15, 0, 0, 0, 0, utc), true},
		{"serial_fraction", entities.SerialDate(45000.5), time.Date(2023, 3, 15, 12, 0, 0, 0, utc), true},
		{"digit_text", entities.TextDate("45000"), time.Date(2023, 3, 15, 0, 0, 0, 0, utc), true},
		{"digit_text_fraction", entities.TextDate("45000.25"), time.Date(2023, 3, 15, 6, 0, 0, 0, utc), true},
		{"us_date", entities.TextDate("01/15/2023"), time.Date(2023, 1, 15, 0, 0, 0, 0, utc), true},
		{"iso_date", entities.TextDate("2023-01-15"), time.Date(2023, 1, 15, 0, 0, 0, 0, utc), true},
		{"iso_datetime", entities.TextDate("2023-01-15T10:30:00Z"), time.Date(2023, 1, 15, 10, 30, 0, 0, utc), true},
		{"padded_text", entities.TextDate("  2023-01-15 "), time.Date(2023, 1, 15, 0, 0, 0, 0, utc), true},
		{"empty", entities.DateCell{}, time.Time{}, false},
		{"blank_text", entities.TextDate("   "), time.Time{}, false},
		{"garbage", entities.TextDate("not a date"), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSiteDate(tt.cell, utc)
			if ok != tt.ok {
				t.Fatalf("ParseSiteDate(%v) ok = %v, want %v", tt.cell, ok, tt.ok)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("ParseSiteDate(%v) = %v, want %v", tt.cell, got, tt.expected)
			}
		})
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func plant(site, region, org string, open, close entities.DateCell) entities.PlantRecord {
	return entities.PlantRecord{
		SiteNumber:         site,
		Region:             region,
		OrganizationNumber: org,
		OpenDate:           open,
		CloseDate:          close,
	}
}

func TestStoreFilter_ActiveStores(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	filter := NewStoreFilter(DefaultStoreFilterRules(), time.UTC).WithClock(fixedClock(now))

	opened := entities.TextDate("2020-01-01")
	none := entities.DateCell{}

	tests := []struct {
		name     string
		plants   []entities.PlantRecord
		expected []string
	}{
		{
			name:     "active_store",
			plants:   []entities.PlantRecord{plant("1001", "West", "9000", opened, none)},
			expected: []string{"1001"},
		},
		{
			name:     "canada_excluded",
			plants:   []entities.PlantRecord{plant("1001", "Canada", "9000", opened, none)},
			expected: []string{},
		},
		{
			name:     "wrong_organization",
			plants:   []entities.PlantRecord{plant("1001", "West", "9100", opened, none)},
			expected: []string{},
		},
		{
			name:     "missing_open_date",
			plants:   []entities.PlantRecord{plant("1001", "West", "9000", none, none)},
			expected: []string{},
		},
		{
			name:     "unparseable_open_date",
			plants:   []entities.PlantRecord{plant("1001", "West", "9000", entities.TextDate("soon"), none)},
			expected: []string{},
		},
		{
			name:     "future_open_date",
			plants:   []entities.PlantRecord{plant("1001", "West", "9000", entities.TextDate("2024-07-01"), none)},
			expected: []string{},
		},
		{
			name:     "open_date_equal_to_now",
			plants:   []entities.PlantRecord{plant("1001", "West", "9000", entities.TextDate("2024-06-01T12:00:00Z"), none)},
			expected: []string{},
		},
		{
			name:     "closed_store",
			plants:   []entities.PlantRecord{plant("1001", "West", "9000", opened, entities.TextDate("2023-12-31"))},
			expected: []string{},
		},
		{
			name:     "future_close_date_still_disqualifies",
			plants:   []entities.PlantRecord{plant("1001", "West", "9000", opened, entities.SerialDate(47000))},
			expected: []string{},
		},
		{
			name:     "unparseable_close_date_ignored",
			plants:   []entities.PlantRecord{plant("1001", "West", "9000", opened, entities.TextDate("n/a"))},
			expected: []string{"1001"},
		},
		{
			name:     "excluded_site",
			plants:   []entities.PlantRecord{plant("9011", "West", "9000", opened, none)},
			expected: []string{},
		},
		{
			name:     "serial_open_date",
			plants:   []entities.PlantRecord{plant("1002", "East", "9000", entities.SerialDate(43831), none)},
			expected: []string{"1002"},
		},
		{
			name: "deduplicated_in_first_appearance_order",
			plants: []entities.PlantRecord{
				plant("2002", "West", "9000", opened, none),
				plant("1001", "West", "9000", opened, none),
				plant("2002", "West", "9000", opened, none),
				plant("3003", "Canada", "9000", opened, none),
			},
			expected: []string{"2002", "1001"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.ActiveStores(tt.plants)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ActiveStores() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStoreFilter_CustomRules(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rules := StoreFilterRules{
		ExcludedRegions:    []string{"Canada", "Mexico"},
		OrganizationNumber: "7000",
		ExcludedSites:      nil,
	}
	filter := NewStoreFilter(rules, time.UTC).WithClock(fixedClock(now))

	plants := []entities.PlantRecord{
		plant("1", "West", "7000", entities.TextDate("2020-01-01"), entities.DateCell{}),
		plant("2", "Mexico", "7000", entities.TextDate("2020-01-01"), entities.DateCell{}),
		plant("9011", "West", "7000", entities.TextDate("2020-01-01"), entities.DateCell{}),
		plant("3", "West", "9000", entities.TextDate("2020-01-01"), entities.DateCell{}),
	}

	got := filter.ActiveStores(plants)
	expected := []string{"1", "9011"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ActiveStores() = %v, want %v", got, expected)
	}
}

func TestStoreFilter_EmptyInput(t *testing.T) {
	filter := NewStoreFilter(DefaultStoreFilterRules(), nil)

	got := filter.ActiveStores(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}
