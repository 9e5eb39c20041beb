package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/saviobatista/snoopr/internal/classify"
	"github.com/saviobatista/snoopr/internal/config"
	"github.com/saviobatista/snoopr/internal/kismet"
	"github.com/saviobatista/snoopr/internal/locate"
	"github.com/saviobatista/snoopr/internal/movement"
	"github.com/saviobatista/snoopr/internal/parser"
	"github.com/saviobatista/snoopr/internal/render"
	"github.com/saviobatista/snoopr/internal/stats"
	"github.com/saviobatista/snoopr/internal/types"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Printf("snoopr failed: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := flag.NewFlagSet("snoopr", flag.ContinueOnError)
	dbPath := flags.String("db-path", cfg.DBPath, "Path to the Kismet capture database (default: most recent .kismet file in the current directory)")
	outputMap := flags.String("output-map", cfg.OutputMap, "Filename for the output HTML map")
	threshold := flags.Float64("movement-threshold", cfg.MovementThreshold, "Threshold distance in miles to detect device movement")
	if err := flags.Parse(args); err != nil {
		return err
	}

	closeLog := setupLogging("snoopr.log")
	defer closeLog()

	capturePath, err := resolveCapture(*dbPath)
	if err != nil {
		return err
	}
	log.Printf("Using capture file: %s", capturePath)

	store, err := kismet.Open(capturePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing capture store: %v\n", err)
		}
	}()

	st := stats.New()

	deviceRows, err := store.Devices()
	if err != nil {
		return fmt.Errorf("failed to read devices: %w", err)
	}
	detections := buildDetections(deviceRows, st)
	log.Printf("Extracted detections for %d devices from the capture.", len(detections))

	classify.Annotate(detections)

	snoopers := movement.DetectSnoopers(detections, *threshold)
	for _, s := range snoopers {
		log.Printf("Snooper detected: %s, moved %.2f miles.", s.Key, s.TotalDistance)
	}
	log.Printf("Detected %d snoopers based on movement threshold %v miles.", len(snoopers), *threshold)
	st.SetSnoopers(uint64(len(snoopers)))

	alertRows, err := store.Alerts()
	if err != nil {
		return fmt.Errorf("failed to read alerts: %w", err)
	}
	alerts := buildAlerts(alertRows, st)
	log.Printf("Extracted %d alerts from the capture.", len(alerts))

	centerLat, centerLon := locate.Center(detections, alerts)
	backfilled := locate.Alerts(alerts, detections, centerLat, centerLon)
	st.SetBackfilledAlerts(uint64(backfilled))

	report := types.ScanReport{
		RunID:             uuid.New().String(),
		CapturePath:       capturePath,
		MovementThreshold: *threshold,
		Devices:           len(detections),
		Detections:        int(atomic.LoadUint64(&st.Detections)),
		Snoopers:          len(snoopers),
		Alerts:            len(alerts),
		BackfilledAlerts:  backfilled,
		GeneratedAt:       time.Now(),
	}

	if err := render.New(*outputMap).Write(report, detections, snoopers, alerts, centerLat, centerLon); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}

	log.Printf("Run %s complete:\n%s", report.RunID, st)
	return nil
}

// resolveCapture picks the capture to analyze: an explicit path when
// given, otherwise the most recent capture in the working directory
func resolveCapture(dbPath string) (string, error) {
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err != nil {
			return "", fmt.Errorf("capture file %s: %w", dbPath, err)
		}
		return dbPath, nil
	}

	latest, err := kismet.FindLatestCapture(".")
	if errors.Is(err, kismet.ErrNoCaptures) {
		return "", errors.New("no capture file to process: pass -db-path or run next to a .kismet file")
	}
	if err != nil {
		return "", err
	}
	return latest, nil
}

// buildDetections normalizes raw device rows and groups them by key
func buildDetections(rows []types.DeviceRow, st *stats.Stats) map[string][]types.Detection {
	detections := make(map[string][]types.Detection)
	for _, row := range rows {
		st.IncrementDeviceRows()
		detection, err := parser.ParseDevice(row)
		if err != nil {
			st.IncrementSkippedDevices()
			continue
		}
		st.IncrementDetections()
		detections[detection.Key] = append(detections[detection.Key], *detection)
	}
	return detections
}

// buildAlerts normalizes raw alert rows, dropping the undecodable ones
func buildAlerts(rows []types.AlertRow, st *stats.Stats) []types.Alert {
	var alerts []types.Alert
	for _, row := range rows {
		st.IncrementAlertRows()
		alert, err := parser.ParseAlert(row)
		if err != nil {
			log.Printf("Skipping alert: %v", err)
			st.IncrementSkippedAlerts()
			if errors.Is(err, parser.ErrBadBlob) {
				st.IncrementBlobFailures()
			}
			continue
		}
		st.IncrementAlerts()
		alerts = append(alerts, *alert)
	}
	return alerts
}

// setupLogging tees log output to a file next to the process,
// best-effort: the run proceeds on stderr alone if the file cannot be
// opened
func setupLogging(path string) func() {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Warning: failed to open log file %s: %v", path, err)
		return func() {}
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}
}
