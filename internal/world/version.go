package world

import (
	"strconv"
	"strings"
)

const (
	supportedMajor    = 1
	minSupportedMinor = 90
)

// CheckVersion accepts generator versions 1.90 and later within major 1.
func CheckVersion(version string) error {
	v := strings.TrimSpace(version)
	parts := strings.Split(v, ".")
	if len(parts) < 2 {
		return &VersionError{Version: version}
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major != supportedMajor {
		return &VersionError{Version: version}
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < minSupportedMinor {
		return &VersionError{Version: version}
	}
	return nil
}
