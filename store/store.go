// Package store persists the full set of offline emergency reports.
//
// Every operation is best-effort: an emergency flow must never block
// on storage failures, so read/write errors are logged and swallowed.
// Callers observe an empty collection or a no-op instead of an error.
package store

import (
	"emergency-report-service/models"
)

// Store is the persistence boundary for emergency reports.
type Store interface {
	// LoadAll returns all persisted reports in storage order. It
	// returns an empty slice if nothing is stored or the backing
	// storage is unreadable.
	LoadAll() []models.OfflineEmergencyReport

	// SaveAll overwrites the persisted state with the given
	// collection.
	SaveAll(reports []models.OfflineEmergencyReport)

	// Append adds one report to the end of the collection.
	Append(report models.OfflineEmergencyReport)

	// Replace substitutes the stored report whose id matches. An
	// unmatched id leaves the collection unchanged.
	Replace(report models.OfflineEmergencyReport)
}
