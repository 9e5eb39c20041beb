// Package render writes the analysis results to an interactive HTML
// map.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"

	"github.com/saviobatista/snoopr/internal/classify"
	"github.com/saviobatista/snoopr/internal/geo"
	"github.com/saviobatista/snoopr/internal/types"
)

//go:embed map.html.tmpl
var mapTemplate string

// Renderer writes analysis results to a single self-contained HTML file
type Renderer struct {
	outputPath string
}

// New creates a new Renderer writing to outputPath
func New(outputPath string) *Renderer {
	return &Renderer{outputPath: outputPath}
}

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type deviceMarker struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Color   string  `json:"color"`
	Icon    string  `json:"icon"`
	Tooltip string  `json:"tooltip"`
	Popup   string  `json:"popup"`
}

type snooperPath struct {
	Points []point `json:"points"`
	Popup  string  `json:"popup"`
	Key    string  `json:"key"`
}

type alertMarker struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Tooltip string  `json:"tooltip"`
	Popup   string  `json:"popup"`
}

type mapData struct {
	Center   point          `json:"center"`
	Devices  []deviceMarker `json:"devices"`
	Snoopers []snooperPath  `json:"snoopers"`
	Alerts   []alertMarker  `json:"alerts"`
}

// Write renders devices, snoopers, and alerts to the output file. When
// there is nothing at all to display, no file is written.
func (r *Renderer) Write(report types.ScanReport, detections map[string][]types.Detection, snoopers []types.SnooperRecord, alerts []types.Alert, centerLat, centerLon float64) error {
	data := mapData{
		Center:   point{Lat: centerLat, Lon: centerLon},
		Devices:  buildDeviceMarkers(detections),
		Snoopers: buildSnooperPaths(snoopers),
		Alerts:   buildAlertMarkers(alerts),
	}

	if len(data.Devices) == 0 && len(data.Snoopers) == 0 && len(data.Alerts) == 0 {
		log.Println("No devices, snoopers, or alerts to display.")
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode map data: %w", err)
	}

	tmpl, err := template.New("map").Parse(mapTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse map template: %w", err)
	}

	if dir := filepath.Dir(r.outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(r.outputPath)
	if err != nil {
		return fmt.Errorf("failed to create map file: %w", err)
	}
	defer out.Close()

	ctx := struct {
		Data        template.JS
		RunID       string
		GeneratedAt string
	}{
		Data:        template.JS(payload),
		RunID:       report.RunID,
		GeneratedAt: report.GeneratedAt.Format("2006-01-02 15:04:05"),
	}
	if err := tmpl.Execute(out, ctx); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}

	log.Printf("Map saved to %s", r.outputPath)
	return nil
}

func buildDeviceMarkers(detections map[string][]types.Detection) []deviceMarker {
	keys := make([]string, 0, len(detections))
	for key := range detections {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var all []types.Detection
	for _, key := range keys {
		for _, d := range detections[key] {
			if geo.ValidLatLon(d.Latitude, d.Longitude) {
				all = append(all, d)
			}
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].ObservedAt < all[j].ObservedAt })

	markers := make([]deviceMarker, 0, len(all))
	for _, d := range all {
		style := classify.StyleFor(d.Category)
		if d.IsDrone {
			style = classify.Style{Icon: "plane", Color: "red", Popup: "Drone Detected!"}
		}
		popup := fmt.Sprintf(
			"<b>%s</b><br>MAC: %s<br>Name/SSID: %s<br>Encryption: %s<br>Device Type: %s<br>Location: %v, %v<br>Last Seen: %s",
			style.Popup, d.Key, d.Name, d.Encryption, d.Category, d.Latitude, d.Longitude, d.LastSeen,
		)
		markers = append(markers, deviceMarker{
			Lat:     d.Latitude,
			Lon:     d.Longitude,
			Color:   style.Color,
			Icon:    style.Icon,
			Tooltip: fmt.Sprintf("%s (%s)", d.Name, d.Category),
			Popup:   popup,
		})
	}
	return markers
}

func buildSnooperPaths(snoopers []types.SnooperRecord) []snooperPath {
	paths := make([]snooperPath, 0, len(snoopers))
	for _, s := range snoopers {
		path := snooperPath{
			Key: s.Key,
			Popup: fmt.Sprintf(
				"<b>Snooper</b><br>MAC: %s<br>Total Movement: %.2f miles",
				s.Key, s.TotalDistance,
			),
		}
		for _, d := range s.Detections {
			path.Points = append(path.Points, point{Lat: d.Latitude, Lon: d.Longitude})
		}
		paths = append(paths, path)
	}
	return paths
}

func buildAlertMarkers(alerts []types.Alert) []alertMarker {
	var markers []alertMarker
	for _, a := range alerts {
		if a.Latitude == nil || a.Longitude == nil {
			// alerts reach the renderer located; anything else is skipped
			continue
		}
		markers = append(markers, alertMarker{
			Lat:     *a.Latitude,
			Lon:     *a.Longitude,
			Tooltip: fmt.Sprintf("Alert: %s", a.Category),
			Popup: fmt.Sprintf(
				"<b>Alert: %s</b><br>MAC: %s<br>Message: %s<br>Time: %s",
				a.Category, a.Key, a.Message, a.OccurredAtDisplay,
			),
		})
	}
	return markers
}
