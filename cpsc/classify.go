package cpsc

import "strings"

// parentOrgByPrefix maps contract number prefixes to parent organizations,
// covering the major MAOs controlling roughly 70% of the market.
var parentOrgByPrefix = map[string]string{
	// UnitedHealth Group
	"H0543": "UnitedHealth Group",
	"H0754": "UnitedHealth Group",
	"H1045": "UnitedHealth Group",
	"H1685": "UnitedHealth Group",
	"H2001": "UnitedHealth Group",
	"H2168": "UnitedHealth Group",
	"H2406": "UnitedHealth Group",
	"H3749": "UnitedHealth Group",
	"H4091": "UnitedHealth Group",
	"H5253": "UnitedHealth Group",
	"H6501": "UnitedHealth Group",
	"H7657": "UnitedHealth Group",

	// CVS Health (Aetna)
	"H0112": "CVS Health (Aetna)",
	"H0318": "CVS Health (Aetna)",
	"H0485": "CVS Health (Aetna)",
	"H0533": "CVS Health (Aetna)",
	"H1609": "CVS Health (Aetna)",
	"H2478": "CVS Health (Aetna)",
	"H3152": "CVS Health (Aetna)",
	"H3312": "CVS Health (Aetna)",
	"H3597": "CVS Health (Aetna)",
	"H4002": "CVS Health (Aetna)",
	"H4448": "CVS Health (Aetna)",
	"H5521": "CVS Health (Aetna)",
	"H9851": "CVS Health (Aetna)",

	// Humana
	"H0028": "Humana",
	"H1036": "Humana",
	"H1406": "Humana",
	"H1951": "Humana",
	"H2649": "Humana",
	"H4141": "Humana",
	"H4461": "Humana",
	"H5216": "Humana",
	"H5619": "Humana",
	"H6622": "Humana",
	"H7495": "Humana",
	"H8145": "Humana",
	"R5826": "Humana",

	// Elevance Health (Anthem)
	"H0146": "Elevance Health (Anthem)",
	"H0540": "Elevance Health (Anthem)",
	"H2006": "Elevance Health (Anthem)",
	"H3655": "Elevance Health (Anthem)",
	"H3905": "Elevance Health (Anthem)",
	"H4624": "Elevance Health (Anthem)",
	"H5853": "Elevance Health (Anthem)",
	"H9019": "Elevance Health (Anthem)",

	// Centene
	"H1485": "Centene",
	"H2712": "Centene",
	"H3447": "Centene",
	"H4007": "Centene",
	"H5427": "Centene",
	"H6832": "Centene",

	// Kaiser Permanente
	"H0524": "Kaiser Permanente",
	"H0630": "Kaiser Permanente",
	"H2172": "Kaiser Permanente",
	"H9003": "Kaiser Permanente",

	// Cigna
	"H0107": "Cigna",
	"H0354": "Cigna",
	"H4513": "Cigna",
	"H5410": "Cigna",
	"H6373": "Cigna",

	// Molina Healthcare
	"H0169": "Molina Healthcare",
	"H0420": "Molina Healthcare",
	"H5823": "Molina Healthcare",
	"H9498": "Molina Healthcare",

	// Blue Cross Blue Shield (various)
	"H0404": "BCBS",
	"H0520": "BCBS",
	"H1350": "BCBS",
	"H2819": "BCBS",
	"H3949": "BCBS",
	"H5008": "BCBS",
	"H6502": "BCBS",
}

// orgKeywords infers a parent organization from a free-text organization
// name. Checked in order; "anthem" must hit Elevance before BCBS.
var orgKeywords = []struct {
	parent   string
	keywords []string
}{
	{"UnitedHealth Group", []string{"united", "uhc", "optum", "pacificare"}},
	{"CVS Health (Aetna)", []string{"aetna", "cvs"}},
	{"Humana", []string{"humana"}},
	{"Elevance Health (Anthem)", []string{"anthem", "wellpoint", "elevance"}},
	{"Centene", []string{"centene", "wellcare", "health net"}},
	{"Kaiser Permanente", []string{"kaiser"}},
	{"Cigna", []string{"cigna"}},
	{"Molina Healthcare", []string{"molina"}},
	{"BCBS", []string{"blue cross", "blue shield", "bcbs"}},
}

var dsnpKeywords = []string{"dsnp", "dual", "d-snp", "dual eligible", "dual-eligible"}

// PlanType identifies the plan category from contract prefix and name hints.
// H contracts are HMO unless the plan name says PPO, R contracts are regional
// PPOs, DSNP is detected first via name/org-type keywords, everything else
// is Other.
func PlanType(contractID, planName, orgType string) string {
	if contractID == "" {
		return PlanOther
	}

	name := strings.ToLower(planName)
	typ := strings.ToLower(orgType)
	for _, kw := range dsnpKeywords {
		if strings.Contains(name, kw) || strings.Contains(typ, kw) {
			return PlanDSNP
		}
	}

	switch contractID[0] {
	case 'H', 'h':
		if strings.Contains(name, "ppo") {
			return PlanPPO
		}
		return PlanHMO
	case 'R', 'r':
		return PlanPPO
	default:
		return PlanOther
	}
}

// ParentOrg resolves a contract's parent organization: direct prefix
// mapping first, then organization name keywords, else "Other".
func ParentOrg(contractID, orgName string) string {
	if contractID == "" {
		return "Other"
	}

	base := contractID
	if len(base) > 5 {
		base = base[:5]
	}
	if parent, ok := parentOrgByPrefix[base]; ok {
		return parent
	}

	name := strings.ToLower(orgName)
	if name != "" {
		for _, entry := range orgKeywords {
			for _, kw := range entry.keywords {
				if strings.Contains(name, kw) {
					return entry.parent
				}
			}
		}
	}
	return "Other"
}

// MarketGroup splits rows into the individual/employer-group market: CMS
// assigns employer group waiver plans E-prefixed contract numbers.
func MarketGroup(contractID string) string {
	if len(contractID) > 0 && (contractID[0] == 'E' || contractID[0] == 'e') {
		return GroupEmployer
	}
	return GroupIndividual
}
