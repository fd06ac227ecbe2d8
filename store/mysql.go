package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"emergency-report-service/config"
	"emergency-report-service/models"
)

// MySQLStore persists reports one row per report, keyed by id. Unlike
// the file backend there is no whole-collection rewrite on Append and
// Replace, so concurrent writers never clobber each other.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore wraps an existing database handle. Use Connect to
// build the handle from configuration.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Connect opens the database, waits for it to become reachable and
// ensures the reports table exists.
func Connect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection with exponential backoff retry
	deadline := time.Now().Add(60 * time.Second)
	waitInterval := 1 * time.Second
	for {
		pingErr := db.Ping()
		if pingErr == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("database ping timeout: %w", pingErr)
		}
		log.WithError(pingErr).Warnf("Database connection failed, retrying in %v", waitInterval)
		time.Sleep(waitInterval)
		waitInterval *= 2
	}

	if err := verifyAndCreateTables(db); err != nil {
		return nil, fmt.Errorf("failed to verify/create tables: %w", err)
	}
	return db, nil
}

// verifyAndCreateTables ensures the emergency_reports table exists
func verifyAndCreateTables(db *sql.DB) error {
	ctx := context.Background()

	var tableExists int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		AND table_name = 'emergency_reports'
	`).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("failed to check if emergency_reports table exists: %w", err)
	}

	if tableExists > 0 {
		log.Info("emergency_reports table already exists")
		return nil
	}

	log.Info("Creating emergency_reports table...")
	createTableSQL := `
		CREATE TABLE emergency_reports (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			id VARCHAR(64) NOT NULL UNIQUE,
			ts DATETIME(3) NOT NULL,
			latitude DOUBLE NULL,
			longitude DOUBLE NULL,
			accuracy DOUBLE NULL,
			report_type VARCHAR(16) NOT NULL,
			description TEXT,
			contact_number VARCHAR(32) NOT NULL,
			status VARCHAR(16) NOT NULL,
			retry_count INT NOT NULL DEFAULT 0,
			INDEX idx_status (status),
			INDEX idx_ts (ts)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create emergency_reports table: %w", err)
	}
	log.Info("emergency_reports table created successfully")
	return nil
}

const selectColumns = `id, ts, latitude, longitude, accuracy, report_type, description, contact_number, status, retry_count`

func (s *MySQLStore) LoadAll() []models.OfflineEmergencyReport {
	rows, err := s.db.Query(`SELECT ` + selectColumns + ` FROM emergency_reports ORDER BY seq`)
	if err != nil {
		log.Errorf("Failed to load reports: %v", err)
		return []models.OfflineEmergencyReport{}
	}
	defer rows.Close()

	reports := []models.OfflineEmergencyReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			log.Errorf("Failed to scan report row: %v", err)
			return []models.OfflineEmergencyReport{}
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("Failed to iterate report rows: %v", err)
		return []models.OfflineEmergencyReport{}
	}
	return reports
}

func (s *MySQLStore) SaveAll(reports []models.OfflineEmergencyReport) {
	tx, err := s.db.Begin()
	if err != nil {
		log.Errorf("Failed to begin transaction: %v", err)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM emergency_reports`); err != nil {
		log.Errorf("Failed to clear reports: %v", err)
		return
	}
	for _, r := range reports {
		if err := insertReport(tx, r); err != nil {
			log.Errorf("Failed to insert report %s: %v", r.ID, err)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Errorf("Failed to commit reports: %v", err)
	}
}

func (s *MySQLStore) Append(report models.OfflineEmergencyReport) {
	if err := insertReport(s.db, report); err != nil {
		log.Errorf("Failed to insert report %s: %v", report.ID, err)
	}
}

func (s *MySQLStore) Replace(report models.OfflineEmergencyReport) {
	var lat, lng, acc any
	if report.Location != nil {
		lat, lng = report.Location.Latitude, report.Location.Longitude
		if report.Location.Accuracy > 0 {
			acc = report.Location.Accuracy
		}
	}
	result, err := s.db.Exec(`UPDATE emergency_reports
		SET ts = ?, latitude = ?, longitude = ?, accuracy = ?, report_type = ?,
		    description = ?, contact_number = ?, status = ?, retry_count = ?
		WHERE id = ?`,
		report.Timestamp, lat, lng, acc, report.ReportType,
		report.Description, report.ContactNumber, report.Status, report.RetryCount,
		report.ID)
	if err != nil {
		log.Errorf("Failed to update report %s: %v", report.ID, err)
		return
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		log.Warnf("Report %s not found in store, replace skipped", report.ID)
	}
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertReport(e execer, r models.OfflineEmergencyReport) error {
	var lat, lng, acc any
	if r.Location != nil {
		lat, lng = r.Location.Latitude, r.Location.Longitude
		if r.Location.Accuracy > 0 {
			acc = r.Location.Accuracy
		}
	}
	_, err := e.Exec(`INSERT
		INTO emergency_reports (id, ts, latitude, longitude, accuracy, report_type, description, contact_number, status, retry_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Timestamp, lat, lng, acc, r.ReportType, r.Description, r.ContactNumber, r.Status, r.RetryCount)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (models.OfflineEmergencyReport, error) {
	var (
		r        models.OfflineEmergencyReport
		lat, lng sql.NullFloat64
		acc      sql.NullFloat64
		desc     sql.NullString
	)
	err := row.Scan(&r.ID, &r.Timestamp, &lat, &lng, &acc,
		&r.ReportType, &desc, &r.ContactNumber, &r.Status, &r.RetryCount)
	if err != nil {
		return r, err
	}
	if lat.Valid && lng.Valid {
		r.Location = &models.Location{
			Latitude:  lat.Float64,
			Longitude: lng.Float64,
			Accuracy:  acc.Float64,
		}
	}
	r.Description = desc.String
	return r, nil
}
