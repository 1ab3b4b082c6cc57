package enroll

import (
	"fmt"
	"slices"
)

// DisplayMode selects which quantity the choropleth colors by.
type DisplayMode string

const (
	ModeTotal     DisplayMode = "total"
	ModeChange    DisplayMode = "change"
	ModeChangePct DisplayMode = "change_pct"
)

// ParseDisplayMode validates a mode string. Empty defaults to ModeTotal.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch DisplayMode(s) {
	case "":
		return ModeTotal, nil
	case ModeTotal, ModeChange, ModeChangePct:
		return DisplayMode(s), nil
	default:
		return "", fmt.Errorf("enroll: unknown display mode %q", s)
	}
}

// Group narrows enrollment to the individual/group market split.
type Group string

const (
	GroupAll        Group = ""
	GroupIndividual Group = "individual"
	GroupEmployer   Group = "group"
)

// Selection is the current filter state. Value precedence when several
// filters are set: contract overrides organization, which overrides the
// group split, which overrides the plan-type set.
type Selection struct {
	Contract     string      `json:"contract,omitempty"`
	Organization string      `json:"organization,omitempty"`
	PlanTypes    []string    `json:"plan_types,omitempty"` // empty = all types
	Group        Group       `json:"group,omitempty"`
	State        string      `json:"state,omitempty"`
	Mode         DisplayMode `json:"mode,omitempty"`
}

func (s Selection) hasPlanType(t string) bool {
	return slices.Contains(s.PlanTypes, t)
}

// valueRule computes a county's scalar enrollment when its filter is active.
// Rules are evaluated top to bottom; the first active rule wins, which makes
// the contract > organization > group > plan-type precedence explicit
// instead of burying it in nested conditionals.
type valueRule struct {
	name   string
	active func(Selection) bool
	value  func(County, Selection) int
}

var valueRules = []valueRule{
	{
		name:   "contract",
		active: func(sel Selection) bool { return sel.Contract != "" },
		value:  func(c County, sel Selection) int { return c.Contracts[sel.Contract] },
	},
	{
		name:   "organization",
		active: func(sel Selection) bool { return sel.Organization != "" },
		value:  func(c County, sel Selection) int { return c.ByOrg[sel.Organization] },
	},
	{
		name:   "group",
		active: func(sel Selection) bool { return sel.Group != GroupAll },
		value:  func(c County, sel Selection) int { return c.ByGroup[string(sel.Group)] },
	},
	{
		name:   "plan_types",
		active: func(sel Selection) bool { return len(sel.PlanTypes) > 0 },
		value: func(c County, sel Selection) int {
			sum := 0
			for t, n := range c.ByPlanType {
				if sel.hasPlanType(t) {
					sum += n
				}
			}
			return sum
		},
	},
	{
		name:   "total",
		active: func(Selection) bool { return true },
		value:  func(c County, _ Selection) int { return c.Total },
	},
}

// Value computes the county's scalar enrollment under the selection.
// A missing breakdown entry contributes zero; it is never an error.
func (s Selection) Value(c County) int {
	for _, r := range valueRules {
		if r.active(s) {
			return r.value(c, s)
		}
	}
	return c.Total // unreachable: the final rule is always active
}
