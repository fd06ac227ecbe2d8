package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/apex/log"

	"emergency-report-service/models"
)

// FileStore keeps the whole report collection as a JSON array in a
// single file. Every read-modify-write cycle runs under one mutex so
// concurrent Append/Replace calls cannot lose updates.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file store backed by the given path. The
// file is created lazily on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) LoadAll() []models.OfflineEmergencyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) SaveAll(reports []models.OfflineEmergencyReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked(reports)
}

func (s *FileStore) Append(report models.OfflineEmergencyReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reports := s.loadLocked()
	s.saveLocked(append(reports, report))
}

func (s *FileStore) Replace(report models.OfflineEmergencyReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reports := s.loadLocked()
	for i := range reports {
		if reports[i].ID == report.ID {
			reports[i] = report
			s.saveLocked(reports)
			return
		}
	}
	log.Warnf("Report %s not found in store, replace skipped", report.ID)
}

func (s *FileStore) loadLocked() []models.OfflineEmergencyReport {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Errorf("Failed to read report store %s: %v", s.path, err)
		}
		return []models.OfflineEmergencyReport{}
	}

	var reports []models.OfflineEmergencyReport
	if err := json.Unmarshal(data, &reports); err != nil {
		log.Errorf("Report store %s is corrupt, treating as empty: %v", s.path, err)
		return []models.OfflineEmergencyReport{}
	}
	if reports == nil {
		reports = []models.OfflineEmergencyReport{}
	}
	return reports
}

func (s *FileStore) saveLocked(reports []models.OfflineEmergencyReport) {
	data, err := json.Marshal(reports)
	if err != nil {
		log.Errorf("Failed to marshal %d reports: %v", len(reports), err)
		return
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Errorf("Failed to create store directory %s: %v", dir, err)
			return
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Errorf("Failed to write report store %s: %v", s.path, err)
	}
}
