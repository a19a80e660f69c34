package qos

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Rate is a bandwidth expression such as "5mbit", "512kbit" or "1gbit".
//
// It is kept in its textual form in configuration and results (matching the
// tc convention) and converted to bits per second when a device is
// programmed. tc rate units are decimal: 1kbit = 1000 bit/s.
type Rate string

var rateRegexp = regexp.MustCompile(`^([0-9]+)(bit|kbit|mbit|gbit)$`)

var rateUnits = map[string]uint64{
	"bit":  1,
	"kbit": 1_000,
	"mbit": 1_000_000,
	"gbit": 1_000_000_000,
}

// ParseRate validates a rate expression and returns it in bits per second.
func ParseRate(expr string) (uint64, error) {
	m := rateRegexp.FindStringSubmatch(strings.ToLower(strings.TrimSpace(expr)))
	if m == nil {
		return 0, fmt.Errorf("invalid rate expression: %q (expected e.g. \"5mbit\", \"512kbit\")", expr)
	}
	value, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate expression: %q: %v", expr, err)
	}
	if value == 0 {
		return 0, fmt.Errorf("invalid rate expression: %q (rate must be positive)", expr)
	}
	return value * rateUnits[m[2]], nil
}

// BitsPerSecond converts the rate to bits per second.
func (r Rate) BitsPerSecond() (uint64, error) {
	return ParseRate(string(r))
}

// IsValid reports whether the rate expression parses.
func (r Rate) IsValid() bool {
	_, err := ParseRate(string(r))
	return err == nil
}

func (r Rate) String() string {
	return string(r)
}
