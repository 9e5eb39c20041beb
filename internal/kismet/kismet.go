// Package kismet reads device and alert rows from a Kismet capture
// database.
package kismet

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/saviobatista/snoopr/internal/types"
)

// ErrNoCaptures is returned when a directory holds no capture files.
var ErrNoCaptures = errors.New("no .kismet capture files found")

// Store is a read-only client for a Kismet capture database
type Store struct {
	db *sql.DB
}

// Open opens the capture database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Devices retrieves all device rows with recorded coordinates, ordered
// by last seen time. Rows that fail to scan are skipped, not fatal.
func (s *Store) Devices() ([]types.DeviceRow, error) {
	query := `
		SELECT devmac, type, device, min_lat, min_lon, last_time
		FROM devices
		WHERE min_lat IS NOT NULL AND min_lon IS NOT NULL
		ORDER BY last_time ASC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch devices: %w", err)
	}
	defer rows.Close()

	var devices []types.DeviceRow
	for rows.Next() {
		var (
			devmac   sql.NullString
			devType  sql.NullString
			blob     []byte
			lat, lon float64
			lastTime sql.NullInt64
		)
		if err := rows.Scan(&devmac, &devType, &blob, &lat, &lon, &lastTime); err != nil {
			log.Printf("Skipping unreadable device row: %v", err)
			continue
		}
		devices = append(devices, types.DeviceRow{
			DevMAC:   devmac.String,
			Type:     devType.String,
			Device:   blob,
			MinLat:   lat,
			MinLon:   lon,
			LastTime: lastTime.Int64,
		})
	}
	return devices, rows.Err()
}

// Alerts retrieves all alert rows from the capture
func (s *Store) Alerts() ([]types.AlertRow, error) {
	query := `
		SELECT devmac, json, ts_sec
		FROM alerts
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}
	defer rows.Close()

	var alerts []types.AlertRow
	for rows.Next() {
		var (
			devmac sql.NullString
			blob   []byte
			tsSec  sql.NullInt64
		)
		if err := rows.Scan(&devmac, &blob, &tsSec); err != nil {
			log.Printf("Skipping unreadable alert row: %v", err)
			continue
		}
		alerts = append(alerts, types.AlertRow{
			DevMAC: devmac.String,
			JSON:   blob,
			TsSec:  tsSec.Int64,
		})
	}
	return alerts, rows.Err()
}

// FindLatestCapture returns the most recently modified .kismet file in
// dir
func FindLatestCapture(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.kismet"))
	if err != nil {
		return "", fmt.Errorf("failed to scan %s for captures: %w", dir, err)
	}

	var latest string
	var latestMod time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = path
			latestMod = info.ModTime()
		}
	}

	if latest == "" {
		return "", ErrNoCaptures
	}
	return latest, nil
}
