package kismet

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// UNIT TESTS WITH SQLMOCK

func TestDevices_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	store := &Store{db: db}

	rows := sqlmock.NewRows([]string{"devmac", "type", "device", "min_lat", "min_lon", "last_time"}).
		AddRow("AA:BB:CC:DD:EE:FF", "Wi-Fi AP", []byte(`{"kismet.device.base.commonname":"Net"}`), 40.7, -74.0, int64(1700000000)).
		AddRow(nil, nil, nil, 30.0, -80.0, nil)
	mock.ExpectQuery("SELECT devmac, type, device, min_lat, min_lon, last_time").WillReturnRows(rows)

	devices, err := store.Devices()
	if err != nil {
		t.Fatalf("Devices() unexpected error: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("Devices() = %d rows, want 2", len(devices))
	}

	if devices[0].DevMAC != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("DevMAC = %q", devices[0].DevMAC)
	}
	if devices[0].MinLat != 40.7 || devices[0].MinLon != -74.0 {
		t.Errorf("position = (%v, %v)", devices[0].MinLat, devices[0].MinLon)
	}
	if devices[0].LastTime != 1700000000 {
		t.Errorf("LastTime = %v", devices[0].LastTime)
	}

	// NULL columns degrade to zero values
	if devices[1].DevMAC != "" || devices[1].Type != "" || devices[1].LastTime != 0 {
		t.Errorf("NULL columns not zeroed: %+v", devices[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestDevices_Unit_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	store := &Store{db: db}

	mock.ExpectQuery("SELECT devmac, type, device, min_lat, min_lon, last_time").
		WillReturnError(errors.New("no such table: devices"))

	if _, err := store.Devices(); err == nil {
		t.Error("Devices() expected error for failing query")
	}
}

func TestAlerts_Unit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	store := &Store{db: db}

	rows := sqlmock.NewRows([]string{"devmac", "json", "ts_sec"}).
		AddRow("AA:BB:CC:DD:EE:FF", []byte(`{"kismet.alert.text":"x"}`), int64(1700000000)).
		AddRow(nil, nil, nil)
	mock.ExpectQuery("SELECT devmac, json, ts_sec").WillReturnRows(rows)

	alerts, err := store.Alerts()
	if err != nil {
		t.Fatalf("Alerts() unexpected error: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("Alerts() = %d rows, want 2", len(alerts))
	}
	if alerts[0].DevMAC != "AA:BB:CC:DD:EE:FF" || alerts[0].TsSec != 1700000000 {
		t.Errorf("alert row = %+v", alerts[0])
	}
	if alerts[1].DevMAC != "" || alerts[1].TsSec != 0 {
		t.Errorf("NULL columns not zeroed: %+v", alerts[1])
	}
}

func TestAlerts_Unit_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	store := &Store{db: db}

	mock.ExpectQuery("SELECT devmac, json, ts_sec").
		WillReturnError(errors.New("no such table: alerts"))

	if _, err := store.Alerts(); err == nil {
		t.Error("Alerts() expected error for failing query")
	}
}

// ROUND-TRIP TESTS AGAINST A REAL CAPTURE FILE

func createTestCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Kismet-20240101-00-00-00.kismet")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to create capture: %v", err)
	}
	defer db.Close()

	schema := `
		CREATE TABLE devices (
			devmac TEXT, type TEXT, device BLOB,
			min_lat REAL, min_lon REAL, last_time INTEGER
		);
		CREATE TABLE alerts (devmac TEXT, json BLOB, ts_sec INTEGER);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	inserts := []string{
		`INSERT INTO devices VALUES ('AA:BB:CC:DD:EE:FF', 'Wi-Fi AP',
			'{"kismet.device.base.commonname":"CoffeeShop"}', 40.7, -74.0, 1700000000)`,
		`INSERT INTO devices VALUES ('11:22:33:44:55:66', 'BTLE', NULL, 30.0, -80.0, 1700000100)`,
		`INSERT INTO devices VALUES ('99:99:99:99:99:99', 'Wi-Fi AP', NULL, NULL, NULL, 1700000200)`,
		`INSERT INTO alerts VALUES ('AA:BB:CC:DD:EE:FF', '{"kismet.alert.text":"Deauth"}', 1700000050)`,
	}
	for _, q := range inserts {
		if _, err := db.Exec(q); err != nil {
			t.Fatalf("failed to seed capture: %v", err)
		}
	}
	return path
}

func TestStore_RoundTrip(t *testing.T) {
	path := createTestCapture(t)

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	devices, err := store.Devices()
	if err != nil {
		t.Fatalf("Devices() failed: %v", err)
	}
	// the NULL-coordinate row is filtered by the query itself
	if len(devices) != 2 {
		t.Fatalf("Devices() = %d rows, want 2", len(devices))
	}
	if devices[0].DevMAC != "AA:BB:CC:DD:EE:FF" || devices[1].DevMAC != "11:22:33:44:55:66" {
		t.Errorf("rows out of last_time order: %q, %q", devices[0].DevMAC, devices[1].DevMAC)
	}
	if len(devices[0].Device) == 0 {
		t.Error("device blob not read back")
	}

	alerts, err := store.Alerts()
	if err != nil {
		t.Fatalf("Alerts() failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Alerts() = %d rows, want 1", len(alerts))
	}
	if alerts[0].TsSec != 1700000050 {
		t.Errorf("TsSec = %v", alerts[0].TsSec)
	}
}

func TestFindLatestCapture(t *testing.T) {
	dir := t.TempDir()

	older := filepath.Join(dir, "Kismet-20240101-00-00-00.kismet")
	newer := filepath.Join(dir, "Kismet-20240201-00-00-00.kismet")
	for _, path := range []string{older, newer} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	if err := os.Chtimes(older, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("failed to age file: %v", err)
	}

	got, err := FindLatestCapture(dir)
	if err != nil {
		t.Fatalf("FindLatestCapture() failed: %v", err)
	}
	if got != newer {
		t.Errorf("FindLatestCapture() = %q, want %q", got, newer)
	}
}

func TestFindLatestCapture_Empty(t *testing.T) {
	_, err := FindLatestCapture(t.TempDir())
	if !errors.Is(err, ErrNoCaptures) {
		t.Errorf("FindLatestCapture() error = %v, want ErrNoCaptures", err)
	}
}
