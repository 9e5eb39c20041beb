package testutils

import (
	"fmt"

	"github.com/saviobatista/snoopr/internal/types"
)

// MockDeviceRow creates a raw device row with a well-formed attribute
// blob for testing
func MockDeviceRow(mac, devType string, lat, lon float64, lastTime int64) types.DeviceRow {
	blob := fmt.Sprintf(
		`{"kismet.device.base.commonname":"SSID-%s","kismet.device.base.crypt":"WPA2-PSK"}`,
		mac,
	)
	return types.DeviceRow{
		DevMAC:   mac,
		Type:     devType,
		Device:   []byte(blob),
		MinLat:   lat,
		MinLon:   lon,
		LastTime: lastTime,
	}
}

// MockAlertRow creates a raw alert row carrying a geopoint location
func MockAlertRow(mac string, tsSec int64, lat, lon float64) types.AlertRow {
	blob := fmt.Sprintf(
		`{"kismet.alert.text":"Test alert from %s","kismet.alert.class":"TESTALERT",`+
			`"kismet.common.location":{"kismet.common.location.geopoint":[%g,%g]}}`,
		mac, lon, lat,
	)
	return types.AlertRow{
		DevMAC: mac,
		JSON:   []byte(blob),
		TsSec:  tsSec,
	}
}

// DetectionAt creates a normalized detection at a point in time
func DetectionAt(key string, lat, lon float64, observedAt int64) types.Detection {
	return types.Detection{
		Key:        key,
		Category:   "wi-fi ap",
		Name:       "Unknown",
		Encryption: "Unknown",
		Latitude:   lat,
		Longitude:  lon,
		ObservedAt: observedAt,
		LastSeen:   "Unknown",
	}
}
