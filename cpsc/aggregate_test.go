package cpsc

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/enrollmap/enrollmap/enroll"
)

func testRows() []Row {
	return []Row{
		{Contract: "H0028", PlanID: "001", State: "AL", County: "Autauga", FIPS: "01001",
			Enrollment: 60, Organization: "Humana Inc.", PlanName: "Humana Gold Plus"},
		{Contract: "H9999", PlanID: "001", State: "AL", County: "Autauga", FIPS: "01001",
			Enrollment: 40, Organization: "Acme Health", PlanName: "Acme PPO Plan"},
		{Contract: "E0001", PlanID: "001", State: "AL", County: "Autauga", FIPS: "01001",
			Enrollment: 10, Organization: "Acme Health", PlanName: "Acme Employer Group"},
		{Contract: "H0028", PlanID: "002", State: "CA", County: "Los Angeles", FIPS: "06037",
			Enrollment: 50, Organization: "Humana Inc.", PlanName: "Humana Gold Plus"},
		// Masked cell: zero enrollment still contributes a row.
		{Contract: "H9999", PlanID: "002", State: "CA", County: "Los Angeles", FIPS: "06037",
			Enrollment: 0, Organization: "Acme Health", PlanName: "Acme PPO Plan"},
	}
}

func TestAggregate(t *testing.T) {
	snap, contracts := Aggregate(testRows(), nil)

	if snap.Metadata.RecordCount != 5 {
		t.Fatalf("record count: got %d", snap.Metadata.RecordCount)
	}
	if snap.Metadata.TotalEnrollment != 160 {
		t.Fatalf("total: got %d", snap.Metadata.TotalEnrollment)
	}
	if len(snap.Counties) != 2 {
		t.Fatalf("counties: got %d", len(snap.Counties))
	}

	autauga := snap.Counties["01001"]
	if autauga.Total != 110 || autauga.State != "AL" || autauga.County != "Autauga" {
		t.Fatalf("autauga: %+v", autauga)
	}
	if autauga.ByOrg["Humana"] != 60 || autauga.ByOrg["Other"] != 50 {
		t.Fatalf("autauga by_org: %+v", autauga.ByOrg)
	}
	if autauga.ByPlanType["HMO"] != 60 || autauga.ByPlanType["PPO"] != 40 {
		t.Fatalf("autauga by_plan_type: %+v", autauga.ByPlanType)
	}
	if autauga.Contracts["H0028"] != 60 {
		t.Fatalf("autauga contracts: %+v", autauga.Contracts)
	}
	// E-prefixed contracts land in the employer group bucket.
	if autauga.ByGroup["group"] != 10 || autauga.ByGroup["individual"] != 100 {
		t.Fatalf("autauga by_group: %+v", autauga.ByGroup)
	}

	if snap.ByState["AL"] != 110 || snap.ByState["CA"] != 50 {
		t.Fatalf("by_state: %+v", snap.ByState)
	}
	if snap.ByOrg["Humana"] != 110 {
		t.Fatalf("by_org: %+v", snap.ByOrg)
	}

	humana := contracts["H0028"]
	if humana.Enrollment != 110 || humana.ParentOrg != "Humana" || humana.PlanType != "HMO" {
		t.Fatalf("H0028: %+v", humana)
	}
	if humana.Organization != "Humana Inc." {
		t.Fatalf("H0028 organization: %q", humana.Organization)
	}
}

func TestAggregateContractInfoOverride(t *testing.T) {
	snap, contracts := Aggregate(testRows(), map[string]string{"H9999": "Acme Parent Corp"})
	if snap.ByOrg["Acme Parent Corp"] != 40 {
		t.Fatalf("override not applied: %+v", snap.ByOrg)
	}
	if contracts["H9999"].ParentOrg != "Acme Parent Corp" {
		t.Fatalf("contract parent: %+v", contracts["H9999"])
	}
}

func TestAggregateFIPSFallback(t *testing.T) {
	rows := []Row{{Contract: "H0028", State: "AL", County: "Somewhere New", Enrollment: 25}}
	snap, _ := Aggregate(rows, nil)
	c, ok := snap.Counties["al_somewhere_new"]
	if !ok {
		t.Fatalf("slug key missing: %v", snap.Counties)
	}
	if c.Total != 25 {
		t.Fatalf("total: %d", c.Total)
	}
}

func TestDominantPlanType(t *testing.T) {
	if got := dominantPlanType(map[string]int{"HMO": 3, "PPO": 1}); got != "HMO" {
		t.Fatalf("got %q", got)
	}
	// Ties break alphabetically.
	if got := dominantPlanType(map[string]int{"PPO": 2, "HMO": 2}); got != "HMO" {
		t.Fatalf("tie: got %q", got)
	}
	if got := dominantPlanType(nil); got != "Unknown" {
		t.Fatalf("empty: got %q", got)
	}
}

func TestCalculateChanges(t *testing.T) {
	current := &enroll.Snapshot{
		Metadata: enroll.Metadata{TotalEnrollment: 160},
		Counties: map[string]enroll.County{
			"01001": {Total: 110},
			"06037": {Total: 50},
			"48201": {Total: 30}, // new county, no baseline
		},
		ByOrg:   map[string]int{"Humana": 110, "Other": 50},
		ByState: map[string]int{"AL": 110, "CA": 50},
	}
	december := &enroll.Snapshot{
		Metadata: enroll.Metadata{TotalEnrollment: 150},
		Counties: map[string]enroll.County{
			"01001": {Total: 100},
			"06037": {Total: 50},
		},
		ByOrg:   map[string]int{"Humana": 100, "Other": 50},
		ByState: map[string]int{"AL": 100, "CA": 50},
	}

	ch := CalculateChanges(current, december)

	if ch.Summary.TotalChange != 10 {
		t.Fatalf("summary change: %+v", ch.Summary)
	}
	if ch.Summary.TotalChangePct != 6.67 {
		t.Fatalf("summary pct rounding: got %v", ch.Summary.TotalChangePct)
	}

	got := ch.Counties["01001"]
	if got.Change != 10 || got.ChangePct != 10.0 {
		t.Fatalf("01001: %+v", got)
	}
	// New county diffs against a zero baseline: full change, zero percent.
	newCounty := ch.Counties["48201"]
	if newCounty.Change != 30 || newCounty.ChangePct != 0 {
		t.Fatalf("48201: %+v", newCounty)
	}
	if ch.ByOrg["Humana"].Change != 10 {
		t.Fatalf("by_org: %+v", ch.ByOrg["Humana"])
	}
	if ch.ByState["CA"].Change != 0 {
		t.Fatalf("by_state: %+v", ch.ByState["CA"])
	}
}

func TestDataMonth(t *testing.T) {
	cases := []struct {
		now         time.Time
		year, month int
	}{
		{time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), 2026, 7},
		{time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC), 2026, 6},
		{time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 2025, 11},
		{time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), 2025, 12},
	}
	for _, c := range cases {
		y, m := DataMonth(c.now)
		if y != c.year || m != c.month {
			t.Errorf("DataMonth(%s) = %d-%02d, want %d-%02d", c.now.Format("2006-01-02"), y, m, c.year, c.month)
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	snap, _ := Aggregate(testRows(), nil)
	path := filepath.Join(t.TempDir(), "nested", "enrollment-current.json")
	if err := WriteJSON(path, snap); err != nil {
		t.Fatal(err)
	}

	var got enroll.Snapshot
	if err := ReadSnapshotFile(path, &got); err != nil {
		t.Fatal(err)
	}
	if got.Metadata.TotalEnrollment != snap.Metadata.TotalEnrollment {
		t.Fatalf("total: got %d want %d", got.Metadata.TotalEnrollment, snap.Metadata.TotalEnrollment)
	}
	if got.Counties["01001"].ByOrg["Humana"] != 60 {
		t.Fatalf("counties: %+v", got.Counties["01001"])
	}
}

func TestParseContractInfo(t *testing.T) {
	raw := []byte("Contract Number,Parent Organization\nH9999,Acme Parent Corp\nH0001,\n,Orphan Org\n")
	got, err := parseContractInfo(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got["H9999"] != "Acme Parent Corp" {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadContractOrgsMissingFile(t *testing.T) {
	if got := LoadContractOrgs(filepath.Join(t.TempDir(), "nope.csv")); got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}
