package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	policyJSON := `{
		"timezone": "Europe/Berlin",
		"daysAheadHorizon": 7,
		"slotDurationMinutes": 30,
		"slotIntervalMinutes": 30,
		"businessHours": {
			"monday": {"open": "09:00", "close": "17:00"}
		},
		"closedWeekdays": ["saturday", "sunday"],
		"maxBookingsPerDay": 3
	}`
	if err := os.WriteFile(path, []byte(policyJSON), 0644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	policy, err := readPolicyFile(path)
	if err != nil {
		t.Fatalf("readPolicyFile() error = %v", err)
	}

	if policy.Timezone != "Europe/Berlin" {
		t.Errorf("Timezone = %q", policy.Timezone)
	}
	if policy.SlotDuration != 30*time.Minute {
		t.Errorf("SlotDuration = %v", policy.SlotDuration)
	}
	if policy.MaxBookingsPerDay != 3 {
		t.Errorf("MaxBookingsPerDay = %d", policy.MaxBookingsPerDay)
	}
	if len(policy.BusinessHours) != 1 {
		t.Errorf("BusinessHours entries = %d", len(policy.BusinessHours))
	}
}

func TestReadPolicyFile_Missing(t *testing.T) {
	if _, err := readPolicyFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing policy file")
	}
}

func TestReadPolicyFile_InvalidPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	if err := os.WriteFile(path, []byte(`{"timezone": "Mars/Olympus"}`), 0644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	if _, err := readPolicyFile(path); err == nil {
		t.Error("expected error for invalid policy")
	}
}
