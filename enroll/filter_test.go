package enroll

import "testing"

func testStore() *Store {
	return &Store{
		Current: &Snapshot{
			Metadata: Metadata{TotalEnrollment: 150},
			Counties: map[string]County{
				"01001": {
					State: "AL", County: "Autauga", FIPS: "01001", Total: 100,
					ByOrg:      map[string]int{"X": 60, "Y": 40},
					ByPlanType: map[string]int{"HMO": 70, "PPO": 30},
					Contracts:  map[string]int{"H0001": 55, "H0002": 45},
					ByGroup:    map[string]int{"individual": 90, "group": 10},
				},
				"06037": {
					State: "CA", County: "Los Angeles", FIPS: "06037", Total: 50,
					ByOrg:      map[string]int{"X": 50},
					ByPlanType: map[string]int{"HMO": 50},
					Contracts:  map[string]int{"H0001": 50},
				},
			},
			ByOrg:      map[string]int{"X": 110, "Y": 40},
			ByPlanType: map[string]int{"HMO": 120, "PPO": 30},
			ByState:    map[string]int{"AL": 100, "CA": 50},
		},
		December: &Snapshot{
			Counties: map[string]County{
				"01001": {
					State: "AL", Total: 110,
					ByOrg:      map[string]int{"X": 70, "Y": 40},
					ByPlanType: map[string]int{"HMO": 80, "PPO": 30},
					Contracts:  map[string]int{"H0001": 60, "H0002": 50},
				},
				"06037": {
					State: "CA", Total: 40,
					ByOrg:      map[string]int{"X": 40},
					ByPlanType: map[string]int{"HMO": 40},
					Contracts:  map[string]int{"H0001": 40},
				},
			},
		},
		Changes: &Changes{
			Counties: map[string]Change{
				"01001": {Current: 100, December: 110, Change: -10, ChangePct: -9.09},
				"06037": {Current: 50, December: 40, Change: 10, ChangePct: 25.0},
			},
		},
	}
}

func TestFilterCountiesUnfiltered(t *testing.T) {
	s := testStore()
	got := s.FilterCounties(Selection{})
	if len(got) != 2 {
		t.Fatalf("expected 2 counties, got %d", len(got))
	}
	if got["01001"].FilteredEnrollment != 100 {
		t.Fatalf("01001: got %d", got["01001"].FilteredEnrollment)
	}
}

func TestFilterCountiesState(t *testing.T) {
	s := testStore()
	got := s.FilterCounties(Selection{State: "CA"})
	if len(got) != 1 {
		t.Fatalf("expected 1 county, got %d", len(got))
	}
	if _, ok := got["06037"]; !ok {
		t.Fatal("expected 06037 present")
	}
}

func TestFilterCountiesPlanTypes(t *testing.T) {
	s := testStore()
	got := s.FilterCounties(Selection{PlanTypes: []string{"PPO"}})
	// Only 01001 has PPO enrollment; 06037 sums to zero and is dropped.
	if len(got) != 1 {
		t.Fatalf("expected 1 county, got %d", len(got))
	}
	if got["01001"].FilteredEnrollment != 30 {
		t.Fatalf("PPO value: got %d", got["01001"].FilteredEnrollment)
	}
}

func TestFilterCountiesGroupOverridesPlanTypes(t *testing.T) {
	s := testStore()
	got := s.FilterCounties(Selection{PlanTypes: []string{"PPO"}, Group: GroupEmployer})
	// Group overrides the plan-type narrowing.
	if got["01001"].FilteredEnrollment != 10 {
		t.Fatalf("got %d, want group sub-total 10", got["01001"].FilteredEnrollment)
	}
	// 06037 has no by_group at all: zero contribution, dropped.
	if _, ok := got["06037"]; ok {
		t.Fatal("06037 should be dropped without by_group data")
	}
}

func TestFilterCountiesOrgOverridesGroup(t *testing.T) {
	s := testStore()
	got := s.FilterCounties(Selection{Organization: "Y", Group: GroupEmployer, PlanTypes: []string{"HMO"}})
	if got["01001"].FilteredEnrollment != 40 {
		t.Fatalf("got %d, want org value 40", got["01001"].FilteredEnrollment)
	}
	if _, ok := got["06037"]; ok {
		t.Fatal("06037 has no org Y, should be dropped")
	}
}

func TestFilterCountiesContractOverridesOrg(t *testing.T) {
	s := testStore()
	got := s.FilterCounties(Selection{Contract: "H0002", Organization: "X"})
	if got["01001"].FilteredEnrollment != 45 {
		t.Fatalf("got %d, want contract value 45", got["01001"].FilteredEnrollment)
	}
	if _, ok := got["06037"]; ok {
		t.Fatal("06037 lacks H0002, should be dropped")
	}
}

func TestFilterCountiesNeverNonPositive(t *testing.T) {
	s := testStore()
	selections := []Selection{
		{},
		{Contract: "H9999"},
		{Organization: "Nobody"},
		{PlanTypes: []string{"DSNP"}},
		{Group: GroupEmployer},
		{State: "TX"},
	}
	for _, sel := range selections {
		for fips, fc := range s.FilterCounties(sel) {
			if fc.FilteredEnrollment <= 0 {
				t.Fatalf("selection %+v returned %s with value %d", sel, fips, fc.FilteredEnrollment)
			}
		}
	}
}

func TestFilterCountiesDoesNotMutateSnapshot(t *testing.T) {
	s := testStore()
	before := s.Current.Counties["01001"].Total
	filtered := s.FilterCounties(Selection{Organization: "X"})
	if filtered["01001"].FilteredEnrollment != 60 {
		t.Fatalf("got %d", filtered["01001"].FilteredEnrollment)
	}
	if s.Current.Counties["01001"].Total != before {
		t.Fatal("snapshot mutated by filtering")
	}
}
