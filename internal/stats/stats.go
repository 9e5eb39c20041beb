package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats tracks record processing counters for one analysis run
type Stats struct {
	DeviceRows       uint64
	SkippedDevices   uint64
	BlobFailures     uint64
	Detections       uint64
	AlertRows        uint64
	SkippedAlerts    uint64
	Alerts           uint64
	Snoopers         uint64
	BackfilledAlerts uint64

	StartedAt time.Time
}

// New creates a new Stats instance
func New() *Stats {
	return &Stats{
		StartedAt: time.Now(),
	}
}

// IncrementDeviceRows increments the raw device rows counter
func (s *Stats) IncrementDeviceRows() {
	atomic.AddUint64(&s.DeviceRows, 1)
}

// IncrementSkippedDevices increments the skipped device rows counter
func (s *Stats) IncrementSkippedDevices() {
	atomic.AddUint64(&s.SkippedDevices, 1)
}

// IncrementBlobFailures increments the attribute blob failure counter
func (s *Stats) IncrementBlobFailures() {
	atomic.AddUint64(&s.BlobFailures, 1)
}

// IncrementDetections increments the normalized detections counter
func (s *Stats) IncrementDetections() {
	atomic.AddUint64(&s.Detections, 1)
}

// IncrementAlertRows increments the raw alert rows counter
func (s *Stats) IncrementAlertRows() {
	atomic.AddUint64(&s.AlertRows, 1)
}

// IncrementSkippedAlerts increments the skipped alerts counter
func (s *Stats) IncrementSkippedAlerts() {
	atomic.AddUint64(&s.SkippedAlerts, 1)
}

// IncrementAlerts increments the normalized alerts counter
func (s *Stats) IncrementAlerts() {
	atomic.AddUint64(&s.Alerts, 1)
}

// SetSnoopers sets the number of snoopers detected
func (s *Stats) SetSnoopers(count uint64) {
	atomic.StoreUint64(&s.Snoopers, count)
}

// SetBackfilledAlerts sets the number of alerts that needed a backfilled location
func (s *Stats) SetBackfilledAlerts(count uint64) {
	atomic.StoreUint64(&s.BackfilledAlerts, count)
}

// String returns a string representation of the run statistics
func (s *Stats) String() string {
	return fmt.Sprintf(
		"Device Rows: %d\n"+
			"Skipped Devices: %d\n"+
			"Blob Failures: %d\n"+
			"Detections: %d\n"+
			"Alert Rows: %d\n"+
			"Skipped Alerts: %d\n"+
			"Alerts: %d\n"+
			"Snoopers: %d\n"+
			"Backfilled Alerts: %d\n"+
			"Elapsed: %s",
		atomic.LoadUint64(&s.DeviceRows),
		atomic.LoadUint64(&s.SkippedDevices),
		atomic.LoadUint64(&s.BlobFailures),
		atomic.LoadUint64(&s.Detections),
		atomic.LoadUint64(&s.AlertRows),
		atomic.LoadUint64(&s.SkippedAlerts),
		atomic.LoadUint64(&s.Alerts),
		atomic.LoadUint64(&s.Snoopers),
		atomic.LoadUint64(&s.BackfilledAlerts),
		time.Since(s.StartedAt).Round(time.Millisecond),
	)
}
