package romstore

import (
	"time"

	"romdex/internal/fingerprint"
	"romdex/internal/scanner"
	"romdex/internal/verify"
)

// RomRecord is the durable representation of a scanned file. Records are
// owned by the collection: the pipeline creates them, the matcher and the
// duplicate resolver mutate status, and nothing deletes them short of
// explicit removal of the backing file.
type RomRecord struct {
	ID      int64
	DriveID string
	// Path is the logical unit path; ArchivePath/EntryPath are set for
	// archive-internal entries.
	Path        string
	ArchivePath string
	EntryPath   string
	Size        int64
	ModTime     time.Time
	// Fingerprint stays nil until hashing completes. A partial
	// fingerprint is never persisted.
	Fingerprint  *fingerprint.Fingerprint
	Status       verify.Status
	MatchedTitle string
	MatchedName  string
	ScannedAt    time.Time
	HashedAt     *time.Time
}

// NewRecord creates a record for a freshly enumerated unit.
func NewRecord(driveID string, unit scanner.FileUnit, now time.Time) *RomRecord {
	return &RomRecord{
		DriveID:     driveID,
		Path:        unit.Path,
		ArchivePath: unit.ArchivePath,
		EntryPath:   unit.EntryPath,
		Size:        unit.Size,
		ModTime:     unit.ModTime,
		Status:      verify.StatusUnknown,
		ScannedAt:   now,
	}
}

// Unit reconstructs the FileUnit origin of the record.
func (r *RomRecord) Unit() scanner.FileUnit {
	return scanner.FileUnit{
		Path:        r.Path,
		ArchivePath: r.ArchivePath,
		EntryPath:   r.EntryPath,
		Size:        r.Size,
		ModTime:     r.ModTime,
	}
}

// Hashed reports whether the record carries a complete fingerprint.
func (r *RomRecord) Hashed() bool {
	return r.Fingerprint != nil && r.Fingerprint.Complete()
}

// Unchanged reports whether the stored size and modification time still
// match the enumerated unit, meaning the stored fingerprint can be reused.
func (r *RomRecord) Unchanged(unit scanner.FileUnit) bool {
	return r.Size == unit.Size && r.ModTime.Equal(unit.ModTime)
}

// JobRecord is the persisted form of a scan job, kept for job history.
type JobRecord struct {
	ID             string
	DriveID        string
	Type           string
	Status         string
	Phase          string
	TotalItems     int64
	ProcessedItems int64
	SkippedItems   int64
	ErrorItems     int64
	TotalBytes     int64
	ProcessedBytes int64
	ErrorMessage   string
	CreatedAt      time.Time
	StartedAt      *time.Time
	FinishedAt     *time.Time
}
