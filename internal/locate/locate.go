// Package locate backfills alert coordinates from nearby device
// sightings and computes the map center.
package locate

import (
	"sort"

	"github.com/saviobatista/snoopr/internal/geo"
	"github.com/saviobatista/snoopr/internal/types"
)

// backfillOffset nudges backfilled alerts off the reference detection's
// marker so the two stay individually clickable.
const backfillOffset = 0.0005

// Fallback map center when no valid location exists anywhere in the
// capture. Deliberately in the middle of Antarctic nowhere so it can
// never collide with a genuine sighting.
const (
	DefaultCenterLat = -80.56899
	DefaultCenterLon = -30.08869
)

// Center returns the chronologically first valid location among all
// detections and alerts, or the fixed fallback when none exists.
func Center(detections map[string][]types.Detection, alerts []types.Alert) (float64, float64) {
	type location struct {
		lat, lon float64
		ts       int64
	}

	var locations []location
	for _, d := range flatten(detections) {
		locations = append(locations, location{lat: d.Latitude, lon: d.Longitude, ts: d.ObservedAt})
	}
	for _, a := range alerts {
		if a.Latitude != nil && a.Longitude != nil && geo.ValidLatLon(*a.Latitude, *a.Longitude) {
			locations = append(locations, location{lat: *a.Latitude, lon: *a.Longitude, ts: a.OccurredAt})
		}
	}

	if len(locations) == 0 {
		return DefaultCenterLat, DefaultCenterLon
	}
	sort.SliceStable(locations, func(i, j int) bool { return locations[i].ts < locations[j].ts })
	return locations[0].lat, locations[0].lon
}

// Alerts assigns coordinates to every alert lacking a valid position and
// returns the number of alerts backfilled. Alerts with a usable
// timestamp borrow the most recent detection at or before it (falling
// back to the earliest detection when the alert predates them all),
// offset slightly; alerts with no timestamp, or captures with no
// detections, land on the map center. After this pass every alert
// carries renderable coordinates.
func Alerts(alerts []types.Alert, detections map[string][]types.Detection, centerLat, centerLon float64) int {
	all := flatten(detections)

	backfilled := 0
	for i := range alerts {
		a := &alerts[i]
		if a.Latitude != nil && a.Longitude != nil && geo.ValidLatLon(*a.Latitude, *a.Longitude) {
			continue
		}

		var lat, lon float64
		if a.OccurredAt != 0 && len(all) > 0 {
			ref := nearestPreceding(all, a.OccurredAt)
			lat = ref.Latitude + backfillOffset
			lon = ref.Longitude + backfillOffset
		} else {
			lat, lon = centerLat, centerLon
		}
		a.Latitude, a.Longitude = &lat, &lon
		backfilled++
	}
	return backfilled
}

// nearestPreceding finds the detection with the latest known timestamp
// at or before ts. Detections without a timestamp only qualify through
// the earliest-overall fallback.
func nearestPreceding(all []types.Detection, ts int64) types.Detection {
	i := sort.Search(len(all), func(i int) bool { return all[i].ObservedAt > ts })
	for j := i - 1; j >= 0; j-- {
		if all[j].ObservedAt != 0 {
			return all[j]
		}
	}
	return all[0]
}

// flatten merges the per-key detection lists into one slice ordered by
// timestamp, iterating keys in sorted order so runs are deterministic.
func flatten(detections map[string][]types.Detection) []types.Detection {
	keys := make([]string, 0, len(detections))
	for key := range detections {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var all []types.Detection
	for _, key := range keys {
		all = append(all, detections[key]...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].ObservedAt < all[j].ObservedAt })
	return all
}
