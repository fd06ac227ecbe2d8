package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// The persisted JSON layout is a compatibility contract with data
// written by earlier app versions; field names must not drift.
func TestReportJSONLayout(t *testing.T) {
	report := OfflineEmergencyReport{
		ID:            "emergency_1700000000000_abc123def",
		Timestamp:     time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		ReportType:    ReportTypeMedical,
		ContactNumber: "108",
		Status:        StatusPending,
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)

	for _, field := range []string{`"id"`, `"timestamp"`, `"location":null`, `"reportType"`, `"contactNumber"`, `"status"`, `"retryCount"`} {
		if !strings.Contains(body, field) {
			t.Errorf("Serialized report missing %s: %s", field, body)
		}
	}
	if strings.Contains(body, `"description"`) {
		t.Errorf("Empty description should be omitted: %s", body)
	}
	if !strings.Contains(body, "2024-06-01T10:00:00Z") {
		t.Errorf("Timestamp not ISO-8601: %s", body)
	}
}

func TestReportTypeValid(t *testing.T) {
	for _, valid := range []ReportType{ReportTypeAccident, ReportTypeMedical, ReportTypeFire, ReportTypeGeneral} {
		if !valid.Valid() {
			t.Errorf("Expected %s valid", valid)
		}
	}
	if ReportType("flood").Valid() {
		t.Error("Expected flood invalid")
	}
}
