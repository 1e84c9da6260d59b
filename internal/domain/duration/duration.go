// Package duration converts between the compact ISO 8601 durations reported
// by the YouTube Data API and whole seconds, and renders seconds for display.
package duration

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMalformedDuration is returned when a duration text does not follow the
// expected notation.
var ErrMalformedDuration = errors.New("malformed duration")

// maxSeconds is 2^63, the first float64 that does not fit in an int64.
const maxSeconds = float64(1 << 63)

// isoRe matches P[nD][T[nH][nM][nS]].
var isoRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// Parse converts a duration such as "PT1H2M3S" to total seconds.
// Missing components count as zero, so "PT" is 0. A day designator
// ("P1DT2H", "P0D") is also accepted.
func Parse(text string) (int64, error) {
	text = strings.TrimSpace(text)
	m := isoRe.FindStringSubmatch(text)
	if m == nil || text == "P" {
		return 0, errors.Mark(errors.Newf("cannot parse duration %q", text), ErrMalformedDuration)
	}

	var total int64
	for i, unit := range []int64{86400, 3600, 60, 1} {
		part := m[i+1]
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, errors.Mark(errors.Wrapf(err, "cannot parse duration %q", text), ErrMalformedDuration)
		}
		if n > math.MaxInt64/unit || total > math.MaxInt64-n*unit {
			return 0, errors.Mark(errors.Newf("duration %q overflows", text), ErrMalformedDuration)
		}
		total += n * unit
	}
	return total, nil
}

// Format renders seconds as H:MM:SS. Hours are not padded; minutes and
// seconds always take two digits. Fractions are dropped. Negative and
// non-finite values render as 0:00:00; finite values beyond int64 seconds
// are clamped to math.MaxInt64.
func Format(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	var s int64
	if seconds >= maxSeconds {
		s = math.MaxInt64
	} else {
		s = int64(math.Floor(seconds))
	}
	return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// ParseClock is the inverse of Format. It accepts "H:MM:SS" and "M:SS".
func ParseClock(text string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, errors.Mark(errors.Newf("invalid clock format %q", text), ErrMalformedDuration)
	}

	values := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, errors.Mark(errors.Newf("invalid clock component %q in %q", p, text), ErrMalformedDuration)
		}
		// Only the leading component may exceed 59.
		if i > 0 && n > 59 {
			return 0, errors.Mark(errors.Newf("clock component %q out of range in %q", p, text), ErrMalformedDuration)
		}
		values[i] = n
	}

	var total int64
	for _, v := range values {
		if total > (math.MaxInt64-v)/60 {
			return 0, errors.Mark(errors.Newf("clock %q overflows", text), ErrMalformedDuration)
		}
		total = total*60 + v
	}
	return total, nil
}
