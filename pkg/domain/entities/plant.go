package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateCell holds a plant date exactly as it arrived: a spreadsheet serial, free text, or nothing
type DateCell struct {
	Serial *float64
	Text   string
}

// SerialDate creates a DateCell from a spreadsheet serial day count
func SerialDate(serial float64) DateCell {
	return DateCell{Serial: &serial}
}

// TextDate creates a DateCell from raw text
func TextDate(text string) DateCell {
	return DateCell{Text: text}
}

// IsEmpty reports whether the cell carries no value at all
func (d DateCell) IsEmpty() bool {
	return d.Serial == nil && strings.TrimSpace(d.Text) == ""
}

// String renders the cell the way it would appear in a CSV file
func (d DateCell) String() string {
	if d.Serial != nil {
		return strconv.FormatFloat(*d.Serial, 'f', -1, 64)
	}
	return d.Text
}

// MarshalJSON encodes a serial as a number, text as a string and an empty cell as null
func (d DateCell) MarshalJSON() ([]byte, error) {
	switch {
	case d.Serial != nil:
		return json.Marshal(*d.Serial)
	case d.Text != "":
		return json.Marshal(d.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, a string or null
func (d *DateCell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*d = DateCell{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &d.Text)
	}
	var serial float64
	if err := json.Unmarshal(data, &serial); err != nil {
		return fmt.Errorf("date cell must be a number, string or null: %w", err)
	}
	d.Serial = &serial
	return nil
}

// PlantRecord represents one row of the plant master; a site appears once per supply channel
type PlantRecord struct {
	SiteNumber         string   `json:"SITE_NUMBER"`
	Region             string   `json:"REGION"`
	OrganizationNumber string   `json:"ORGANIZATION_NUMBER"`
	OpenDate           DateCell `json:"OPEN_DATE"`
	CloseDate          DateCell `json:"CLOSE_DATE"`
	SiteDescription    string   `json:"SITE_DESCRIPTION,omitempty"`
}

// PlantMetadata describes where stored plant data came from
type PlantMetadata struct {
	LastUpdated time.Time `json:"last_updated"`
	SourceFile  string    `json:"source_file"`
}

// PlantSnapshot is the persisted unit of plant data
type PlantSnapshot struct {
	Records  []PlantRecord
	Metadata PlantMetadata
}
