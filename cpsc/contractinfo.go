package cpsc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// parseContractInfo extracts the contract → parent organization mapping from
// a CMS contract-info CSV.
func parseContractInfo(raw []byte) (map[string]string, error) {
	decoded, _ := decodeBytes(raw)
	r := csv.NewReader(strings.NewReader(decoded))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("cpsc: contract info header: %w", err)
	}
	normalized := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if _, seen := normalized[h]; !seen {
			normalized[h] = i
		}
	}

	contractCol, ok := firstIndex(normalized, "contract_number", "contract_id", "contractid")
	if !ok {
		return nil, errors.New("cpsc: contract info has no contract column")
	}
	parentCol, ok := firstIndex(normalized, "parent_organization", "parent_org", "organization", "organization_name")
	if !ok {
		return nil, errors.New("cpsc: contract info has no organization column")
	}

	out := make(map[string]string)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cpsc: contract info record: %w", err)
		}
		if contractCol >= len(rec) || parentCol >= len(rec) {
			continue
		}
		contract := strings.TrimSpace(rec[contractCol])
		org := strings.TrimSpace(rec[parentCol])
		if contract != "" && org != "" {
			out[contract] = org
		}
	}
	return out, nil
}

func firstIndex(cols map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
