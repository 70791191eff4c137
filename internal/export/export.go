// Package export renders a filtered lookup result into a tabular
// snapshot for download: descriptive metadata rows, a header row whose
// columns depend on the pricing category, and one row per registrant.
package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/confreg/tier-reporting/internal/civdate"
	"github.com/confreg/tier-reporting/internal/model"
)

// Extension is the file extension for generated snapshots.
const Extension = ".csv"

// maxComponentLen caps each sanitized file-name component.
const maxComponentLen = 80

var baseColumns = []string{
	"ID", "Badge Name", "First Name", "Last Name",
	"Email", "Organization", "Created At", "Status",
}

// Snapshot is one rendered export: the generated file name and the
// full table, metadata first.
type Snapshot struct {
	FileName string
	Rows     [][]string
}

// BuildSnapshot renders the rows for one (category, label) selection.
// An empty registrant list still yields a valid header-only table.
func BuildSnapshot(category model.Category, label string, event *model.Event, regs []model.Registrant, now time.Time) *Snapshot {
	rows := [][]string{
		{"Tier Category", string(category)},
		{"Tier Label", label},
		{"Event", event.Name},
		{"Exported At", civdate.Stamp(now)},
		{},
	}

	header := append([]string(nil), baseColumns...)
	switch category {
	case model.CategoryCompanion:
		header = append(header, "Companion First Name", "Companion Last Name", "Companion Added At")
	case model.CategoryDependent:
		header = append(header, "Dependents", "Dependent Added At")
	}
	rows = append(rows, header)

	for i := range regs {
		rows = append(rows, dataRow(&regs[i], category))
	}

	return &Snapshot{
		FileName: FileName(event.Name, string(category), label),
		Rows:     rows,
	}
}

func dataRow(reg *model.Registrant, category model.Category) []string {
	status := "Active"
	if reg.Cancelled {
		status = "Cancelled"
	}
	row := []string{
		reg.ID, reg.BadgeName, reg.FirstName, reg.LastName,
		reg.Email, reg.Organization, civdate.Stamp(reg.CreatedAt), status,
	}
	switch category {
	case model.CategoryCompanion:
		row = append(row, reg.CompanionFirstName, reg.CompanionLastName, stamp(reg.CompanionAddedAt))
	case model.CategoryDependent:
		row = append(row, strconv.Itoa(reg.DependentCount), stamp(reg.DependentAddedAt))
	}
	return row
}

func stamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return civdate.Stamp(*t)
}

// WriteCSV serialises the snapshot table.
func (s *Snapshot) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, row := range s.Rows {
		// csv.Writer rejects zero-field records; the separator row is
		// written as a single empty cell.
		if len(row) == 0 {
			row = []string{""}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the serialised snapshot bytes.
func (s *Snapshot) CSV() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := s.WriteCSV(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// FileName joins the sanitized components with underscores and the
// snapshot extension. Components that sanitize to nothing are dropped;
// a fully degenerate input still yields a usable name.
func FileName(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := Sanitize(p); c != "" {
			clean = append(clean, c)
		}
	}
	if len(clean) == 0 {
		clean = append(clean, "export")
	}
	return strings.Join(clean, "_") + Extension
}

// Sanitize flattens one file-name component: every run of
// non-alphanumeric characters becomes a single underscore, leading and
// trailing underscores are stripped, and the result is capped at 80
// characters. Sanitizing an already-sanitized string is a no-op.
func Sanitize(s string) string {
	s = nonAlnum.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > maxComponentLen {
		s = strings.TrimRight(s[:maxComponentLen], "_")
	}
	return s
}
