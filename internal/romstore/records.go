package romstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"romdex/internal/fingerprint"
	"romdex/internal/verify"
)

const recordColumns = "id, drive_id, path, archive_path, entry_path, size, mod_time, crc32, md5, sha1, status, matched_title, matched_name, scanned_at, hashed_at"

// SaveBatch upserts a batch of records keyed by (drive_id, path) inside one
// transaction. Batching keeps the pipeline from serializing behind storage
// latency. Records with an incomplete fingerprint are persisted without
// hash fields rather than with partial ones.
func (s *Store) SaveBatch(ctx context.Context, records []*RomRecord) error {
	if len(records) == 0 {
		return nil
	}
	ctx = ensureContext(ctx)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin batch tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `
            INSERT INTO rom_records (
                drive_id, path, archive_path, entry_path, size, mod_time,
                crc32, md5, sha1, status, matched_title, matched_name,
                scanned_at, hashed_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT (drive_id, path) DO UPDATE SET
                archive_path = excluded.archive_path,
                entry_path = excluded.entry_path,
                size = excluded.size,
                mod_time = excluded.mod_time,
                crc32 = excluded.crc32,
                md5 = excluded.md5,
                sha1 = excluded.sha1,
                status = excluded.status,
                matched_title = excluded.matched_title,
                matched_name = excluded.matched_name,
                scanned_at = excluded.scanned_at,
                hashed_at = excluded.hashed_at`)
		if err != nil {
			return fmt.Errorf("prepare batch upsert: %w", err)
		}
		defer stmt.Close()

		for _, record := range records {
			var crc, md5Hex, sha1Hex any
			if record.Hashed() {
				crc = record.Fingerprint.CRC32
				md5Hex = record.Fingerprint.MD5
				sha1Hex = record.Fingerprint.SHA1
			}
			if _, err := stmt.ExecContext(ctx,
				record.DriveID,
				record.Path,
				nullableString(record.ArchivePath),
				nullableString(record.EntryPath),
				record.Size,
				record.ModTime.UTC().Format(time.RFC3339Nano),
				crc,
				md5Hex,
				sha1Hex,
				string(record.Status),
				nullableString(record.MatchedTitle),
				nullableString(record.MatchedName),
				record.ScannedAt.UTC().Format(time.RFC3339Nano),
				nullableTime(record.HashedAt),
			); err != nil {
				return fmt.Errorf("upsert record %s: %w", record.Path, err)
			}
		}

		return tx.Commit()
	})
}

// LoadExisting returns every persisted record for a drive, keyed for
// incremental-scan reuse.
func (s *Store) LoadExisting(ctx context.Context, driveID string) ([]*RomRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM rom_records WHERE drive_id = ? ORDER BY path`, driveID)
	if err != nil {
		return nil, fmt.Errorf("load existing records: %w", err)
	}
	defer rows.Close()

	var records []*RomRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteMissing removes records for a drive whose paths are absent from the
// provided set. Used only when a scan explicitly confirms file removal.
func (s *Store) DeleteMissing(ctx context.Context, driveID string, present map[string]struct{}) (int64, error) {
	ctx = ensureContext(ctx)
	existing, err := s.LoadExisting(ctx, driveID)
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, record := range existing {
		if _, ok := present[record.Path]; ok {
			continue
		}
		if err := s.execWithRetry(ctx,
			`DELETE FROM rom_records WHERE drive_id = ? AND path = ?`, driveID, record.Path); err != nil {
			return removed, fmt.Errorf("delete record %s: %w", record.Path, err)
		}
		removed++
	}
	return removed, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*RomRecord, error) {
	var (
		id           int64
		driveID      string
		path         string
		archivePath  sql.NullString
		entryPath    sql.NullString
		size         int64
		modTimeRaw   sql.NullString
		crc          sql.NullString
		md5Hex       sql.NullString
		sha1Hex      sql.NullString
		statusStr    string
		matchedTitle sql.NullString
		matchedName  sql.NullString
		scannedRaw   sql.NullString
		hashedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id, &driveID, &path, &archivePath, &entryPath, &size, &modTimeRaw,
		&crc, &md5Hex, &sha1Hex, &statusStr, &matchedTitle, &matchedName,
		&scannedRaw, &hashedRaw,
	); err != nil {
		return nil, err
	}

	record := &RomRecord{
		ID:           id,
		DriveID:      driveID,
		Path:         path,
		ArchivePath:  archivePath.String,
		EntryPath:    entryPath.String,
		Size:         size,
		Status:       verify.Status(statusStr),
		MatchedTitle: matchedTitle.String,
		MatchedName:  matchedName.String,
	}

	if crc.Valid && md5Hex.Valid && sha1Hex.Valid {
		record.Fingerprint = &fingerprint.Fingerprint{
			Size:  size,
			CRC32: crc.String,
			MD5:   md5Hex.String,
			SHA1:  sha1Hex.String,
		}
	}

	if modTime, err := parseTimeString(modTimeRaw.String); err == nil {
		record.ModTime = modTime
	}
	if scanned, err := parseTimeString(scannedRaw.String); err == nil {
		record.ScannedAt = scanned
	}
	if hashedRaw.Valid {
		if hashed, err := parseTimeString(hashedRaw.String); err == nil {
			record.HashedAt = &hashed
		}
	}
	return record, nil
}
