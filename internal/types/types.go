package types

import (
	"time"
)

// DeviceRow is a raw device record as read from the capture store.
type DeviceRow struct {
	DevMAC   string  `json:"devmac"`
	Type     string  `json:"type"`
	Device   []byte  `json:"device"` // embedded attribute blob
	MinLat   float64 `json:"min_lat"`
	MinLon   float64 `json:"min_lon"`
	LastTime int64   `json:"last_time"` // epoch seconds, 0 when unknown
}

// AlertRow is a raw alert record as read from the capture store.
type AlertRow struct {
	DevMAC string `json:"devmac"`
	JSON   []byte `json:"json"` // embedded attribute blob
	TsSec  int64  `json:"ts_sec"`
}

// Detection represents one validated sighting of a device
type Detection struct {
	Key        string  `json:"key"`
	Category   string  `json:"category"`
	Name       string  `json:"name"`
	Encryption string  `json:"encryption"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ObservedAt int64   `json:"observed_at"` // epoch seconds, 0 when unknown
	LastSeen   string  `json:"last_seen"`   // human-readable display string
	IsDrone    bool    `json:"is_drone"`
}

// SnooperRecord represents a device whose consecutive sightings moved
// beyond the movement threshold
type SnooperRecord struct {
	Key           string      `json:"key"`
	Detections    []Detection `json:"detections"`     // time-ordered
	TotalDistance float64     `json:"total_distance"` // miles, accumulated through the flagged pair
}

// Alert represents one reported event, decoupled from the detection stream
type Alert struct {
	Key               string   `json:"key"`
	Message           string   `json:"message"`
	Category          string   `json:"category"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	OccurredAt        int64    `json:"occurred_at"` // epoch seconds, 0 when unknown
	OccurredAtDisplay string   `json:"occurred_at_display"`
}

// ScanReport summarizes a complete analysis run
type ScanReport struct {
	RunID             string    `json:"run_id"`
	CapturePath       string    `json:"capture_path"`
	MovementThreshold float64   `json:"movement_threshold"`
	Devices           int       `json:"devices"`
	Detections        int       `json:"detections"`
	Snoopers          int       `json:"snoopers"`
	Alerts            int       `json:"alerts"`
	BackfilledAlerts  int       `json:"backfilled_alerts"`
	GeneratedAt       time.Time `json:"generated_at"`
}
