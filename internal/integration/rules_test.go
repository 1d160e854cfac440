package integration

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRules(t *testing.T) {
	t.Parallel()

	stdout, _, exitCode := runCheckRaw(t, "rules")
	if exitCode != 0 {
		t.Fatalf("rules command failed with exit code %d\noutput: %s", exitCode, stdout)
	}

	// Spot-check a rule from each detector family.
	for _, want := range []string{"C001", "D001", "L001", "P001", "R001", "B001"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected rule %s in listing", want)
		}
	}
	if !strings.Contains(stdout, "Function too long") {
		t.Error("expected rule summary in listing")
	}
}

func TestRulesDescribe(t *testing.T) {
	t.Parallel()

	stdout, _, exitCode := runCheckRaw(t, "rules", "--describe")
	if exitCode != 0 {
		t.Fatalf("rules --describe failed with exit code %d\noutput: %s", exitCode, stdout)
	}
	if !strings.Contains(stdout, "self/cls not counted") {
		t.Error("expected rule descriptions in --describe output")
	}
}

func TestRulesJSON(t *testing.T) {
	t.Parallel()

	stdout, _, exitCode := runCheckRaw(t, "rules", "--json")
	if exitCode != 0 {
		t.Fatalf("rules --json failed with exit code %d\noutput: %s", exitCode, stdout)
	}

	var metas []struct {
		ID       string `json:"id"`
		Severity string `json:"severity"`
		Summary  string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(stdout), &metas); err != nil {
		t.Fatalf("rules --json produced invalid JSON: %v\noutput: %s", err, stdout)
	}
	if len(metas) < 30 {
		t.Errorf("expected the full rule catalog, got %d entries", len(metas))
	}
	// Sorted by ID, so the boolean logic family comes first.
	if metas[0].ID != "B001" {
		t.Errorf("expected first rule B001, got %s", metas[0].ID)
	}
	for _, m := range metas {
		if m.ID == "" || m.Severity == "" || m.Summary == "" {
			t.Errorf("rule entry missing fields: %+v", m)
		}
	}
}
