package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"emergency-report-service/models"
)

func testFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "reports.json"))
}

func sampleReport(id string) models.OfflineEmergencyReport {
	return models.OfflineEmergencyReport{
		ID:        id,
		Timestamp: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Location: &models.Location{
			Latitude:  11.6740,
			Longitude: 78.1489,
			Accuracy:  15,
		},
		ReportType:    models.ReportTypeAccident,
		Description:   "vehicle collision",
		ContactNumber: "108",
		Status:        models.StatusPending,
		RetryCount:    0,
	}
}

func TestFileStoreEmptyWhenMissing(t *testing.T) {
	s := testFileStore(t)
	if reports := s.LoadAll(); len(reports) != 0 {
		t.Errorf("Expected empty store, got %d reports", len(reports))
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := testFileStore(t)

	in := []models.OfflineEmergencyReport{sampleReport("a"), sampleReport("b")}
	in[1].Location = nil
	in[1].Description = ""
	s.SaveAll(in)

	out := s.LoadAll()
	if len(out) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(out))
	}
	if out[0].ID != "a" || out[1].ID != "b" {
		t.Errorf("Storage order not preserved: %s, %s", out[0].ID, out[1].ID)
	}
	if out[0].Location == nil || out[0].Location.Latitude != 11.6740 || out[0].Location.Accuracy != 15 {
		t.Errorf("Location lost in round trip: %+v", out[0].Location)
	}
	if out[1].Location != nil {
		t.Errorf("Expected nil location preserved, got %+v", out[1].Location)
	}
	if !out[0].Timestamp.Equal(in[0].Timestamp) {
		t.Errorf("Timestamp changed in round trip: %v vs %v", out[0].Timestamp, in[0].Timestamp)
	}

	// saveAll(loadAll()) is the identity.
	s.SaveAll(s.LoadAll())
	again := s.LoadAll()
	if len(again) != 2 || again[0].ID != "a" || again[1].ID != "b" {
		t.Errorf("Save of loaded collection changed contents: %+v", again)
	}
}

func TestFileStoreAppend(t *testing.T) {
	s := testFileStore(t)

	s.Append(sampleReport("a"))
	s.Append(sampleReport("b"))

	out := s.LoadAll()
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Errorf("Expected appended reports in order, got %+v", out)
	}
}

func TestFileStoreReplace(t *testing.T) {
	s := testFileStore(t)
	s.Append(sampleReport("a"))
	s.Append(sampleReport("b"))

	updated := sampleReport("b")
	updated.Status = models.StatusSent
	updated.RetryCount = 2
	s.Replace(updated)

	out := s.LoadAll()
	if out[1].Status != models.StatusSent || out[1].RetryCount != 2 {
		t.Errorf("Expected replaced report updated, got %+v", out[1])
	}
	if out[0].Status != models.StatusPending {
		t.Errorf("Expected other report untouched, got %+v", out[0])
	}
}

func TestFileStoreReplaceUnknownIDIsNoop(t *testing.T) {
	s := testFileStore(t)
	s.Append(sampleReport("a"))

	ghost := sampleReport("ghost")
	ghost.Status = models.StatusFailed
	s.Replace(ghost)

	out := s.LoadAll()
	if len(out) != 1 || out[0].ID != "a" || out[0].Status != models.StatusPending {
		t.Errorf("Expected collection unchanged, got %+v", out)
	}
}

func TestFileStoreCorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	if reports := s.LoadAll(); len(reports) != 0 {
		t.Errorf("Expected empty result for corrupt store, got %d", len(reports))
	}

	// The store stays usable after corruption.
	s.Append(sampleReport("a"))
	if reports := s.LoadAll(); len(reports) != 1 {
		t.Errorf("Expected 1 report after append over corrupt file, got %d", len(reports))
	}
}
