package models

import (
	"time"
)

// ReportType classifies what kind of emergency a report describes.
type ReportType string

const (
	ReportTypeAccident ReportType = "accident"
	ReportTypeMedical  ReportType = "medical"
	ReportTypeFire     ReportType = "fire"
	ReportTypeGeneral  ReportType = "general"
)

// Valid reports whether t is one of the known report types.
func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeAccident, ReportTypeMedical, ReportTypeFire, ReportTypeGeneral:
		return true
	}
	return false
}

// ReportStatus tracks the delivery state of a report.
// Sent and failed are terminal.
type ReportStatus string

const (
	StatusPending ReportStatus = "pending"
	StatusSent    ReportStatus = "sent"
	StatusFailed  ReportStatus = "failed"
)

// Location is a point-in-time coordinate snapshot taken when a report
// is created. It is never re-queried afterward.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"` // meters, 0 when unknown
}

// OfflineEmergencyReport is the persisted emergency report record.
type OfflineEmergencyReport struct {
	ID            string       `json:"id"`
	Timestamp     time.Time    `json:"timestamp"`
	Location      *Location    `json:"location"` // nil when unavailable at creation
	ReportType    ReportType   `json:"reportType"`
	Description   string       `json:"description,omitempty"`
	ContactNumber string       `json:"contactNumber"`
	Status        ReportStatus `json:"status"`
	RetryCount    int          `json:"retryCount"`
}
