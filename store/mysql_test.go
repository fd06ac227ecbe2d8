package store

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"emergency-report-service/models"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func reportColumns() []string {
	return []string{"id", "ts", "latitude", "longitude", "accuracy", "report_type", "description", "contact_number", "status", "retry_count"}
}

func TestMySQLLoadAll(t *testing.T) {
	it(func() {
		s := NewMySQLStore(db)
		ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

		mock.ExpectQuery("SELECT (.+) FROM emergency_reports ORDER BY seq").
			WillReturnRows(sqlmock.NewRows(reportColumns()).
				AddRow("a", ts, 11.674, 78.1489, 15.0, "accident", "collision", "108", "pending", 0).
				AddRow("b", ts, nil, nil, nil, "medical", nil, "108", "sent", 1))

		reports := s.LoadAll()
		if len(reports) != 2 {
			t.Fatalf("Expected 2 reports, got %d", len(reports))
		}
		if reports[0].ID != "a" || reports[0].Location == nil || reports[0].Location.Accuracy != 15 {
			t.Errorf("First report scanned wrong: %+v", reports[0])
		}
		if reports[1].Location != nil {
			t.Errorf("Expected nil location for NULL coordinates, got %+v", reports[1].Location)
		}
		if reports[1].Status != models.StatusSent || reports[1].RetryCount != 1 {
			t.Errorf("Second report scanned wrong: %+v", reports[1])
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestMySQLLoadAllQueryError(t *testing.T) {
	it(func() {
		s := NewMySQLStore(db)

		mock.ExpectQuery("SELECT (.+) FROM emergency_reports ORDER BY seq").
			WillReturnError(fmt.Errorf("connection lost"))

		if reports := s.LoadAll(); len(reports) != 0 {
			t.Errorf("Expected empty result on query error, got %d", len(reports))
		}
	})
}

func TestMySQLAppend(t *testing.T) {
	it(func() {
		s := NewMySQLStore(db)

		mock.ExpectExec("INSERT INTO emergency_reports (.+)").
			WithArgs("a", sqlmock.AnyArg(), 11.674, 78.1489, 15.0, "accident", "collision", "108", "pending", 0).
			WillReturnResult(sqlmock.NewResult(1, 1))

		s.Append(models.OfflineEmergencyReport{
			ID:            "a",
			Timestamp:     time.Now(),
			Location:      &models.Location{Latitude: 11.674, Longitude: 78.1489, Accuracy: 15},
			ReportType:    models.ReportTypeAccident,
			Description:   "collision",
			ContactNumber: "108",
			Status:        models.StatusPending,
		})

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestMySQLAppendWithoutLocation(t *testing.T) {
	it(func() {
		s := NewMySQLStore(db)

		mock.ExpectExec("INSERT INTO emergency_reports (.+)").
			WithArgs("b", sqlmock.AnyArg(), nil, nil, nil, "medical", "", "108", "pending", 0).
			WillReturnResult(sqlmock.NewResult(1, 1))

		s.Append(models.OfflineEmergencyReport{
			ID:            "b",
			Timestamp:     time.Now(),
			ReportType:    models.ReportTypeMedical,
			ContactNumber: "108",
			Status:        models.StatusPending,
		})

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestMySQLReplace(t *testing.T) {
	it(func() {
		s := NewMySQLStore(db)

		mock.ExpectExec("UPDATE emergency_reports SET (.+) WHERE id = (.+)").
			WithArgs(sqlmock.AnyArg(), nil, nil, nil, "fire", "", "101", "failed", 3, "c").
			WillReturnResult(sqlmock.NewResult(0, 1))

		s.Replace(models.OfflineEmergencyReport{
			ID:            "c",
			Timestamp:     time.Now(),
			ReportType:    models.ReportTypeFire,
			ContactNumber: "101",
			Status:        models.StatusFailed,
			RetryCount:    3,
		})

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestMySQLSaveAllReplacesCollection(t *testing.T) {
	it(func() {
		s := NewMySQLStore(db)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM emergency_reports").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("INSERT INTO emergency_reports (.+)").
			WithArgs("a", sqlmock.AnyArg(), nil, nil, nil, "general", "", "112", "pending", 0).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		s.SaveAll([]models.OfflineEmergencyReport{{
			ID:            "a",
			Timestamp:     time.Now(),
			ReportType:    models.ReportTypeGeneral,
			ContactNumber: "112",
			Status:        models.StatusPending,
		}})

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}
