// Package service drives the lifecycle of offline emergency reports:
// creation, message formatting, delivery attempts, the retry bound
// and pruning of aged-out records.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"emergency-report-service/dispatch"
	"emergency-report-service/location"
	"emergency-report-service/models"
	"emergency-report-service/sms"
	"emergency-report-service/store"
)

// MaxRetryAttempts bounds how many failed delivery attempts a report
// gets before it becomes terminally failed.
const MaxRetryAttempts = 3

// Dispatcher queues an alert for manual delivery when the SMS channel
// is unavailable. Implemented by dispatch.Publisher.
type Dispatcher interface {
	Publish(ctx context.Context, msg dispatch.ManualDispatch) error
}

// ReportService orchestrates report creation, delivery and retention.
type ReportService struct {
	store      store.Store
	location   location.Provider
	channel    sms.Channel
	dispatcher Dispatcher // optional, nil disables the fallback path
}

// NewReportService creates a new report lifecycle service
func NewReportService(st store.Store, loc location.Provider, ch sms.Channel, d Dispatcher) *ReportService {
	return &ReportService{
		store:      st,
		location:   loc,
		channel:    ch,
		dispatcher: d,
	}
}

// Create builds and persists a new pending report. Location
// acquisition is best-effort: a provider failure yields a report
// without coordinates, never an error. Delivery is a separate step.
func (s *ReportService) Create(ctx context.Context, reportType models.ReportType, contactNumber, description string) (*models.OfflineEmergencyReport, error) {
	if !reportType.Valid() {
		return nil, fmt.Errorf("unknown report type %q", reportType)
	}
	if contactNumber == "" {
		return nil, fmt.Errorf("contact number is required")
	}

	loc, err := s.location.Current(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to get location for report, continuing without coordinates")
		loc = nil
	}

	report := models.OfflineEmergencyReport{
		ID:            newReportID(),
		Timestamp:     time.Now(),
		Location:      loc,
		ReportType:    reportType,
		Description:   description,
		ContactNumber: contactNumber,
		Status:        models.StatusPending,
		RetryCount:    0,
	}

	s.store.Append(report)
	log.Infof("Created %s report %s for contact %s", report.ReportType, report.ID, report.ContactNumber)
	return &report, nil
}

// newReportID builds a time-based id with a random suffix to avoid
// collision within the same process.
func newReportID() string {
	return fmt.Sprintf("emergency_%d_%s", time.Now().UnixMilli(), randomSuffix(9))
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}

// FormatMessage renders the human-readable alert text for a report.
// The structure is a wire contract with the human reading the SMS on
// the other end; field order and the banner must not change.
func (s *ReportService) FormatMessage(report *models.OfflineEmergencyReport) string {
	var msg strings.Builder

	msg.WriteString("🚨 EMERGENCY ALERT - TEJUS APP 🚨\n\n")

	msg.WriteString("Report Type: " + strings.ToUpper(string(report.ReportType)) + "\n")
	msg.WriteString("Time: " + report.Timestamp.Format("1/2/2006, 3:04:05 PM") + "\n")
	msg.WriteString("Report ID: " + report.ID + "\n\n")

	if report.Location != nil {
		msg.WriteString("📍 LOCATION:\n")
		msg.WriteString(fmt.Sprintf("Lat: %.6f\n", report.Location.Latitude))
		msg.WriteString(fmt.Sprintf("Lng: %.6f\n", report.Location.Longitude))
		if report.Location.Accuracy > 0 {
			msg.WriteString(fmt.Sprintf("Accuracy: ±%.0fm\n", report.Location.Accuracy))
		}
		msg.WriteString("\nGoogle Maps: https://maps.google.com/?q=" +
			strconv.FormatFloat(report.Location.Latitude, 'f', -1, 64) + "," +
			strconv.FormatFloat(report.Location.Longitude, 'f', -1, 64) + "\n\n")
	} else {
		msg.WriteString("📍 LOCATION: Unable to determine\n\n")
	}

	if report.Description != "" {
		msg.WriteString("Description: " + report.Description + "\n\n")
	}

	msg.WriteString("⚠️ This is an automated emergency alert sent via TEJUS Emergency Response App.\n")
	msg.WriteString("Emergency data has been saved to database for emergency services coordination.\n\n")
	msg.WriteString("Please respond immediately if this is a genuine emergency.")

	return msg.String()
}

// AttemptDelivery makes one delivery attempt for the report and
// returns whether it succeeded. Terminal records are never touched:
// a sent report stays sent with its retry count frozen, a failed
// report stays failed.
func (s *ReportService) AttemptDelivery(ctx context.Context, report *models.OfflineEmergencyReport) bool {
	if report.Status != models.StatusPending {
		log.Warnf("Report %s is %s, skipping delivery attempt", report.ID, report.Status)
		return report.Status == models.StatusSent
	}

	message := s.FormatMessage(report)

	if !s.channel.Available(ctx) {
		// Fallback: hand the alert to the manual dispatch queue.
		// Completion of the manual send is unobservable from here,
		// so the report is optimistically marked sent.
		if s.dispatcher != nil {
			if err := s.dispatcher.Publish(ctx, dispatch.ManualDispatch{
				ReportID:      report.ID,
				ContactNumber: report.ContactNumber,
				Body:          message,
				QueuedAt:      time.Now(),
			}); err == nil {
				log.Warnf("Report %s queued for manual dispatch, delivery unconfirmed", report.ID)
				report.Status = models.StatusSent
				s.store.Replace(*report)
				return true
			} else {
				log.WithError(err).Errorf("Failed to queue report %s for manual dispatch", report.ID)
			}
		}
		return s.recordFailure(report)
	}

	result, err := s.channel.Send(ctx, report.ContactNumber, message)
	if err != nil || result != sms.ResultSent {
		if err != nil {
			log.WithError(err).Errorf("Failed to send report %s", report.ID)
		}
		return s.recordFailure(report)
	}

	report.Status = models.StatusSent
	s.store.Replace(*report)
	log.Infof("Report %s delivered after %d prior failed attempts", report.ID, report.RetryCount)
	return true
}

func (s *ReportService) recordFailure(report *models.OfflineEmergencyReport) bool {
	report.RetryCount++
	if report.RetryCount >= MaxRetryAttempts {
		report.Status = models.StatusFailed
		log.Errorf("Report %s failed permanently after %d attempts", report.ID, report.RetryCount)
	} else {
		log.Warnf("Delivery attempt %d for report %s failed, will retry", report.RetryCount, report.ID)
	}
	s.store.Replace(*report)
	return false
}

// ListAll returns every stored report in creation order.
func (s *ReportService) ListAll() []models.OfflineEmergencyReport {
	return s.store.LoadAll()
}

// ListPending returns the reports still eligible for a delivery
// attempt, in creation order.
func (s *ReportService) ListPending() []models.OfflineEmergencyReport {
	all := s.store.LoadAll()
	pending := []models.OfflineEmergencyReport{}
	for _, report := range all {
		if report.Status == models.StatusPending && report.RetryCount < MaxRetryAttempts {
			pending = append(pending, report)
		}
	}
	return pending
}

// RetrySweep attempts delivery once for every report that was pending
// when the sweep started and returns how many attempts succeeded.
// Attempts run sequentially; reports created mid-sweep wait for the
// next sweep.
func (s *ReportService) RetrySweep(ctx context.Context) int {
	start := time.Now()
	pending := s.ListPending()
	log.Infof("Retry sweep started: %d pending reports", len(pending))

	successCount := 0
	for i := range pending {
		if ctx.Err() != nil {
			log.Warnf("Retry sweep cancelled after %d of %d reports", i, len(pending))
			break
		}
		if s.AttemptDelivery(ctx, &pending[i]) {
			successCount++
		}
	}

	log.Infof("Retry sweep finished: %d of %d deliveries succeeded (took %s)", successCount, len(pending), time.Since(start))
	return successCount
}

// PruneOlderThan discards every report created more than the given
// number of days ago, regardless of status. This is irreversible.
func (s *ReportService) PruneOlderThan(days int) {
	cutoff := time.Now().AddDate(0, 0, -days)
	all := s.store.LoadAll()

	kept := []models.OfflineEmergencyReport{}
	for _, report := range all {
		if report.Timestamp.After(cutoff) {
			kept = append(kept, report)
		}
	}

	if len(kept) == len(all) {
		return
	}
	s.store.SaveAll(kept)
	log.Infof("Pruned %d reports older than %d days, %d remain", len(all)-len(kept), days, len(kept))
}
