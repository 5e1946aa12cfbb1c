package portfolio

import (
	"encoding/json"
	"fmt"
	"time"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/portfolio"
)

// BackupManager keeps a bounded history of prior document states.
// It is a pure transform over in-memory documents; persistence is the caller's job.
type BackupManager struct {
	maxBackups int
	now        func() time.Time
}

// NewBackupManager creates a backup manager. maxBackups <= 0 uses the default cap.
func NewBackupManager(maxBackups int) *BackupManager {
	if maxBackups <= 0 {
		maxBackups = config.MaxBackups
	}
	return &BackupManager{
		maxBackups: maxBackups,
		now:        time.Now,
	}
}

// BeforeUpdate snapshots current (without its backups) and returns the backup
// entry together with the version the updated document must carry.
func (m *BackupManager) BeforeUpdate(current *models.Portfolio, principal string) (models.Backup, int, error) {
	snapshot, err := Snapshot(current)
	if err != nil {
		return models.Backup{}, 0, err
	}

	entry := models.Backup{
		Version:   current.Version,
		Snapshot:  snapshot,
		CreatedAt: m.now().UTC(),
		CreatedBy: principal,
	}
	return entry, current.Version + 1, nil
}

// Apply appends entry to doc's history, evicts the oldest entries beyond the cap
// and sets doc.Version.
func (m *BackupManager) Apply(doc *models.Portfolio, entry models.Backup, newVersion int) {
	backups := append(doc.Backups, entry)
	if overflow := len(backups) - m.maxBackups; overflow > 0 {
		backups = backups[overflow:]
	}
	// Copy so the evicted prefix is not kept alive by the backing array
	doc.Backups = append([]models.Backup(nil), backups...)
	doc.Version = newVersion
}

// Snapshot encodes doc without its backups
func Snapshot(doc *models.Portfolio) (json.RawMessage, error) {
	copied := *doc
	copied.Backups = nil

	data, err := json.Marshal(&copied)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot of portfolio %s: %w", doc.ID, err)
	}
	return data, nil
}

// FindBackup returns the retained backup taken at version
func FindBackup(doc *models.Portfolio, version int) (*models.Backup, error) {
	for i := range doc.Backups {
		if doc.Backups[i].Version == version {
			return &doc.Backups[i], nil
		}
	}
	return nil, &domain.NotFoundError{
		Message: fmt.Sprintf("backup version %d of portfolio %s not found", version, doc.ID),
	}
}

// DecodeSnapshot restores the document state held by a backup
func DecodeSnapshot(b *models.Backup) (*models.Portfolio, error) {
	var doc models.Portfolio
	if err := json.Unmarshal(b.Snapshot, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot version %d: %w", b.Version, err)
	}
	return &doc, nil
}
