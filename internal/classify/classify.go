// Package classify assigns map styles and a drone heuristic to detections.
package classify

import (
	"regexp"
	"strings"

	"github.com/saviobatista/snoopr/internal/types"
)

// Style describes how a device category is drawn on the map
type Style struct {
	Icon  string
	Color string
	Popup string
}

// typeStyles maps lowercase device-type tags to marker styles
var typeStyles = map[string]Style{
	"wi-fi ap":      {Icon: "wifi", Color: "blue", Popup: "Wi-Fi Access Point"},
	"wi-fi client":  {Icon: "user", Color: "lightblue", Popup: "Wi-Fi Client"},
	"btle":          {Icon: "bluetooth", Color: "green", Popup: "Bluetooth LE Device"},
	"br/edr":        {Icon: "bluetooth", Color: "darkgreen", Popup: "Bluetooth Classic Device"},
	"wi-fi bridged": {Icon: "exchange-alt", Color: "orange", Popup: "Wi-Fi Bridged Device"},
	"wi-fi wds ap":  {Icon: "wifi", Color: "cadetblue", Popup: "Wi-Fi WDS Access Point"},
	"wi-fi ad-hoc":  {Icon: "users", Color: "purple", Popup: "Wi-Fi Ad-Hoc Network"},
	"wi-fi wds":     {Icon: "wifi", Color: "lightblue", Popup: "Wi-Fi WDS Device"},
	"wi-fi device":  {Icon: "wifi", Color: "gray", Popup: "Wi-Fi Device"},
	"tpms":          {Icon: "car", Color: "purple", Popup: "Tire Pressure Monitoring System"},
	"airplane":      {Icon: "plane", Color: "blue", Popup: "Airplane"},
	"ads-b":         {Icon: "plane", Color: "blue", Popup: "ADS-B Device"},
	"unknown":       {Icon: "question-circle", Color: "darkgray", Popup: "Unknown Device"},
}

// known drone product name fragments, matched as substrings
var droneNames = []string{
	"DJI-Mavic", "DJI-Avata", "DJI-Thermal", "DJI", "Brinc-Lemur", "Autel-Evo", "DJI-Matrice",
}

var droneNamePattern = compileNamePattern(droneNames)

// known drone vendor OUIs (first three MAC octets, lowercase)
var droneOUIs = map[string]struct{}{
	"60:60:1f": {},
	"90:3a:e6": {},
	"ac:7b:a1": {},
	"dc:a6:32": {},
	"00:1e:c0": {},
	"18:18:9f": {},
	"68:ad:2f": {},
}

func compileNamePattern(names []string) *regexp.Regexp {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// StyleFor returns the marker style for a lowercase device-type tag,
// falling back to the "unknown" entry for unmapped tags
func StyleFor(category string) Style {
	if s, ok := typeStyles[category]; ok {
		return s
	}
	return typeStyles["unknown"]
}

// IsDrone reports whether a device looks like a known drone product,
// either by a name fragment or by its MAC vendor prefix. A short or
// absent MAC simply never matches.
func IsDrone(name, mac string) bool {
	if name != "" && droneNamePattern.MatchString(name) {
		return true
	}
	prefix := mac
	if len(prefix) > 8 {
		prefix = prefix[:8] // first three octets
	}
	_, ok := droneOUIs[strings.ToLower(prefix)]
	return ok
}

// Annotate applies the drone heuristic to every detection in place. It
// runs once, after normalization and before movement analysis.
func Annotate(detections map[string][]types.Detection) {
	for _, list := range detections {
		for i := range list {
			list[i].IsDrone = IsDrone(list[i].Name, list[i].Key)
		}
	}
}
