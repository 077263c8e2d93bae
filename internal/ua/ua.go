// internal/ua/ua.go
//
// User-Agent parsing helpers.
//
// Wraps `github.com/avct/uasurfer` so the rest of the site never sees its
// enums.  The registration audit trail stores Summary(), the home page
// greets visitors with Browser and Device, and bot traffic is tagged
// before it reaches the form handlers.
package ua

import (
	"fmt"
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"
)

// Device classes.
const (
	Desktop = "Desktop"
	Mobile  = "Mobile"
	Tablet  = "Tablet"
	Other   = "Other"
)

// Info carries the UA attributes recorded per request.
//
// Example (Chrome on macOS):
//
//	Browser   "Chrome"
//	Version   "125"
//	OS        "MacOSX"
//	Device    "Desktop"
//	IsBot     false
type Info struct {
	Browser string
	Version string
	OS      string
	Device  string
	IsBot   bool
}

// Parse converts a raw header into an Info.  An empty header yields an
// Info with Device Other and no browser.
func Parse(raw string) Info {
	if strings.TrimSpace(raw) == "" {
		return Info{Device: Other}
	}
	u := surfer.Parse(raw)

	info := Info{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version: majorMinor(u.Browser.Version),
		OS:      strings.TrimPrefix(u.OS.Name.String(), "OS"),
		IsBot:   u.IsBot(),
	}
	if info.Browser == "Unknown" {
		info.Browser = ""
	}
	if info.OS == "Unknown" {
		info.OS = ""
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		info.Device = Desktop
	case surfer.DeviceTablet:
		info.Device = Tablet
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = Mobile
	default:
		info.Device = Other
	}
	return info
}

// Summary is the short "browser version/device" form stored with audit
// rows, e.g. "Chrome 125/Desktop".
func (i Info) Summary() string {
	b := strings.TrimSpace(i.Browser + " " + i.Version)
	if b == "" {
		b = "unknown"
	}
	return b + "/" + i.Device
}

// majorMinor renders 17.0.0 → "17", 17.3.x → "17.3".  Patch levels are
// noise for the audit trail.
func majorMinor(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0:
		return ""
	case v.Minor == 0:
		return strconv.Itoa(v.Major)
	default:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
}
