package cpsc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrMissingColumns is returned when the CSV lacks a required column after
// alias normalization.
var ErrMissingColumns = errors.New("cpsc: missing required columns")

// columnAliases maps the standard column names to the header variants CMS
// has used over the years. Headers are normalized (trimmed, lowered, spaces
// to underscores) before matching.
var columnAliases = map[string][]string{
	"contract":     {"contract_number", "contractid", "contract_id", "h_number"},
	"plan_id":      {"plan_id", "planid", "plan_number"},
	"state":        {"state", "state_code", "bene_state"},
	"county":       {"county", "county_name", "bene_county"},
	"fips":         {"fips", "fips_code", "county_fips", "ssa_code", "fips_state_county_code"},
	"enrollment":   {"enrollment", "total_enrollment", "enrolled", "member_count", "enrollees"},
	"organization": {"organization_name", "org_name", "organization", "plan_org_name", "parent_organization"},
	"plan_name":    {"plan_name", "plan_benefit_package_name", "pbp_name"},
	"org_type":     {"organization_type", "org_type", "special_needs_plan_type"},
}

// ReadFile parses a CMS CPSC CSV. CMS files arrive in varying encodings;
// UTF-8 is tried first, then cp1252 and latin-1.
func ReadFile(path string) ([]Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cpsc: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes the CSV bytes into normalized rows.
func Parse(raw []byte) ([]Row, error) {
	decoded, enc := decodeBytes(raw)
	slog.Debug("cpsc csv decoded", "encoding", enc, "bytes", len(decoded))

	r := csv.NewReader(strings.NewReader(decoded))
	r.FieldsPerRecord = -1 // CMS files occasionally carry ragged rows

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("cpsc: read header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cpsc: read record: %w", err)
		}
		rows = append(rows, Row{
			Contract:     cols.get(rec, "contract"),
			PlanID:       cols.get(rec, "plan_id"),
			State:        cols.get(rec, "state"),
			County:       cols.get(rec, "county"),
			FIPS:         cols.get(rec, "fips"),
			Enrollment:   parseEnrollment(cols.get(rec, "enrollment")),
			Organization: cols.get(rec, "organization"),
			PlanName:     cols.get(rec, "plan_name"),
			OrgType:      cols.get(rec, "org_type"),
		})
	}
	return rows, nil
}

// decodeBytes returns UTF-8 text, falling back through the encodings CMS
// files have shipped in.
func decodeBytes(raw []byte) (string, string) {
	if utf8.Valid(raw) {
		return string(raw), "utf-8"
	}
	for _, cand := range []struct {
		name string
		enc  encoding.Encoding
	}{
		{"cp1252", charmap.Windows1252},
		{"latin-1", charmap.ISO8859_1},
	} {
		out, _, err := transform.Bytes(cand.enc.NewDecoder(), raw)
		if err == nil {
			return string(out), cand.name
		}
	}
	// latin-1 decoding cannot actually fail; this is belt and braces.
	return string(raw), "raw"
}

type columnIndex map[string]int

func (c columnIndex) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func resolveColumns(header []string) (columnIndex, error) {
	normalized := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if _, seen := normalized[h]; !seen {
			normalized[h] = i
		}
	}

	cols := make(columnIndex)
	for standard, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := normalized[a]; ok {
				cols[standard] = i
				break
			}
		}
	}

	var missing []string
	for _, required := range []string{"contract", "state", "enrollment"} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (headers: %s)",
			ErrMissingColumns, strings.Join(missing, ", "), strings.Join(header, ", "))
	}
	return cols, nil
}

// parseEnrollment coerces an enrollment cell to an integer. CMS masks cell
// values below 11 with '*'; those, and anything else unparseable, become 0.
func parseEnrollment(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
