package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownZone = errors.New("unknown zone")

// Zone identifies one of the two supported geographic contexts.
type Zone uint8

const (
	CABA Zone = iota // Ciudad Autónoma de Buenos Aires
	PBA              // Provincia de Buenos Aires
)

// DefaultZone is selected when a session starts.
const DefaultZone = CABA

var zoneCodes = [...]string{CABA: "CABA", PBA: "PBA"}

var zoneLabels = [...]string{
	CABA: "CABA (Ciudad de Buenos Aires)",
	PBA:  "Provincia de Buenos Aires",
}

// Zones returns every zone in selector order.
func Zones() []Zone {
	return []Zone{CABA, PBA}
}

func (z Zone) String() string {
	return zoneCodes[z]
}

// Label is the human readable name shown in the zone selector.
func (z Zone) Label() string {
	return zoneLabels[z]
}

// ParseZone converts a zone code ("CABA", "PBA", case-insensitive).
func ParseZone(s string) (Zone, error) {
	for i, code := range zoneCodes {
		if strings.EqualFold(strings.TrimSpace(s), code) {
			return Zone(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownZone, s)
}

func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

func (z *Zone) UnmarshalText(text []byte) error {
	parsed, err := ParseZone(string(text))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}
