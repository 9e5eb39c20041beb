// Package movement flags devices whose sighted positions tracked the
// scanning platform instead of staying fixed.
package movement

import (
	"sort"

	"github.com/saviobatista/snoopr/internal/geo"
	"github.com/saviobatista/snoopr/internal/types"
)

// DefaultThreshold is the distance in miles between consecutive
// sightings that marks a device as a snooper.
const DefaultThreshold = 0.05

// DetectSnoopers walks each device's detections in time order and flags
// the device once the distance between any consecutive pair reaches the
// threshold. The first crossing wins: scanning stops for that device and
// at most one record is emitted per key, carrying the distance
// accumulated up to and including the flagged pair. Devices with fewer
// than two detections never qualify.
func DetectSnoopers(detections map[string][]types.Detection, threshold float64) []types.SnooperRecord {
	keys := make([]string, 0, len(detections))
	for key := range detections {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var snoopers []types.SnooperRecord
	for _, key := range keys {
		if record, ok := analyze(key, detections[key], threshold); ok {
			snoopers = append(snoopers, record)
		}
	}
	return snoopers
}

func analyze(key string, detections []types.Detection, threshold float64) (types.SnooperRecord, bool) {
	if len(detections) < 2 {
		return types.SnooperRecord{}, false
	}

	ordered := make([]types.Detection, len(detections))
	copy(ordered, detections)
	// unknown timestamps sort as epoch 0, ties keep input order
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ObservedAt < ordered[j].ObservedAt
	})

	var total float64
	for i := 1; i < len(ordered); i++ {
		d := geo.Distance(
			ordered[i-1].Latitude, ordered[i-1].Longitude,
			ordered[i].Latitude, ordered[i].Longitude,
		)
		total += d
		if d >= threshold {
			return types.SnooperRecord{
				Key:           key,
				Detections:    ordered,
				TotalDistance: total,
			}, true
		}
	}
	return types.SnooperRecord{}, false
}
