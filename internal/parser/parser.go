// Package parser normalizes raw capture rows into canonical detection
// and alert records.
package parser

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/saviobatista/snoopr/internal/geo"
	"github.com/saviobatista/snoopr/internal/sanitize"
	"github.com/saviobatista/snoopr/internal/types"
)

// Attribute keys used by the capture format. Schema ownership lies with
// the capture tool; these are the keys it is known to emit.
const (
	attrCommonName  = "kismet.device.base.commonname"
	attrEncryption  = "kismet.device.base.crypt"
	attrAlertText   = "kismet.alert.text"
	attrAlertClass  = "kismet.alert.class"
	attrLocation    = "kismet.common.location"
	attrGeopoint    = "kismet.common.location.geopoint"
	attrLocationLat = "kismet.common.location.lat"
	attrLocationLon = "kismet.common.location.lon"
)

const displayTimeLayout = "2006-01-02 15:04:05"

// maxEpoch is the last second of year 9999, the edge of the range a
// timestamp can be displayed in. Values outside it count as conversion
// failures rather than aborting the row.
const maxEpoch = 253402300799

var (
	// ErrInvalidCoordinates marks a device row whose position failed validation.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrBadBlob marks an embedded attribute blob that could not be decoded.
	ErrBadBlob = errors.New("malformed attribute blob")
)

// ParseDevice normalizes a raw device row into a Detection. Rows with
// out-of-range or sentinel-zero coordinates return ErrInvalidCoordinates.
// A malformed attribute blob does not drop the row: the failure is logged
// and the detection is built from defaults.
func ParseDevice(row types.DeviceRow) (*types.Detection, error) {
	key := "unknown"
	if row.DevMAC != "" {
		key = strings.ToLower(sanitize.String(row.DevMAC))
	}

	attrs, err := decodeAttributes(row.Device)
	if err != nil {
		log.Printf("Error parsing attributes for device %s: %v", key, err)
		attrs = nil
	}

	if !geo.ValidLatLon(row.MinLat, row.MinLon) {
		return nil, fmt.Errorf("device %s: %w", key, ErrInvalidCoordinates)
	}

	category := "unknown"
	if row.Type != "" {
		category = strings.ToLower(sanitize.String(row.Type))
	}

	return &types.Detection{
		Key:        key,
		Category:   category,
		Name:       sanitize.String(attrs[attrCommonName]),
		Encryption: sanitize.String(attrs[attrEncryption]),
		Latitude:   row.MinLat,
		Longitude:  row.MinLon,
		ObservedAt: row.LastTime,
		LastSeen:   formatLastSeen(row.LastTime),
	}, nil
}

// ParseAlert normalizes a raw alert row into an Alert. An absent blob
// yields a defaulted alert; a blob that fails to decode drops the alert
// entirely, since its message and class are essential.
func ParseAlert(row types.AlertRow) (*types.Alert, error) {
	key := "unknown"
	if row.DevMAC != "" {
		key = strings.ToLower(sanitize.String(row.DevMAC))
	}

	alert := &types.Alert{
		Key:      key,
		Message:  "No message",
		Category: "Unknown",
	}
	alert.OccurredAt, alert.OccurredAtDisplay = convertAlertTime(row.TsSec)

	if len(row.JSON) > 0 {
		attrs, err := decodeAttributes(row.JSON)
		if err != nil {
			return nil, fmt.Errorf("alert from %s: %w", key, err)
		}

		message := any("No message")
		if v, ok := attrs[attrAlertText]; ok {
			message = v
		}
		class := any("Unknown")
		if v, ok := attrs[attrAlertClass]; ok {
			class = v
		}
		alert.Message = sanitize.String(message)
		alert.Category = sanitize.String(class)

		lat, lon, err := extractLocation(attrs)
		if err != nil {
			return nil, fmt.Errorf("alert from %s: %w", key, err)
		}
		alert.Latitude = lat
		alert.Longitude = lon
	}

	return alert, nil
}

// decodeAttributes parses an embedded attribute blob. Callers substitute
// an empty set on failure; this is the single recoverable error path for
// blob handling.
func decodeAttributes(blob []byte) (map[string]any, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var attrs map[string]any
	if err := json.Unmarshal(blob, &attrs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBlob, err)
	}
	return attrs, nil
}

// extractLocation pulls coordinates from the nested location object,
// preferring the two-element [longitude, latitude] geopoint over the
// discrete lat/lon keys. Zero-like values are absent, not 0.0.
func extractLocation(attrs map[string]any) (*float64, *float64, error) {
	location, _ := attrs[attrLocation].(map[string]any)
	if location == nil {
		return nil, nil, nil
	}

	var rawLat, rawLon any
	if geopoint, ok := location[attrGeopoint].([]any); ok && len(geopoint) == 2 {
		rawLon, rawLat = geopoint[0], geopoint[1]
	} else {
		rawLat = location[attrLocationLat]
		rawLon = location[attrLocationLon]
	}

	lat, err := coerceFloat(rawLat)
	if err != nil {
		return nil, nil, err
	}
	lon, err := coerceFloat(rawLon)
	if err != nil {
		return nil, nil, err
	}
	return lat, lon, nil
}

// coerceFloat converts a decoded attribute value to a coordinate.
// Missing, empty, and zero values are all "no fix".
func coerceFloat(v any) (*float64, error) {
	var f float64
	switch val := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = val
	case string:
		if val == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate value %q: %w", val, err)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("invalid coordinate value %v", v)
	}
	if f == 0 {
		return nil, nil
	}
	return &f, nil
}

// formatLastSeen renders a device timestamp for display. Zero means the
// capture never recorded one; out-of-range values get an explicit marker.
func formatLastSeen(ts int64) string {
	if ts == 0 {
		return "Unknown"
	}
	if ts < 0 || ts > maxEpoch {
		return "Invalid Timestamp"
	}
	return time.Unix(ts, 0).Format(displayTimeLayout)
}

// convertAlertTime mirrors the device path, but an unconvertible value
// falls back to the raw number for display and leaves the alert without
// a usable timestamp.
func convertAlertTime(ts int64) (int64, string) {
	if ts == 0 {
		return 0, "Unknown"
	}
	if ts < 0 || ts > maxEpoch {
		return 0, strconv.FormatInt(ts, 10)
	}
	return ts, time.Unix(ts, 0).Format(displayTimeLayout)
}
