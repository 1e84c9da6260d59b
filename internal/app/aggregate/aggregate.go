// Package aggregate sums video durations and derives the per-speed totals.
package aggregate

import (
	"math"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/osa030/ytlength/internal/domain/duration"
	"github.com/osa030/ytlength/internal/domain/video"
)

// ErrEmptyPlaylist is returned when there is nothing to aggregate; the
// average is undefined in that case.
var ErrEmptyPlaylist = errors.New("playlist has no videos")

// ErrTotalOverflow is returned when the summed durations do not fit in int64
// seconds.
var ErrTotalOverflow = errors.New("playlist total duration overflows")

// PlaybackSpeeds are the multipliers a report is computed for, fastest first.
var PlaybackSpeeds = [...]float64{2, 1.75, 1.5, 1.25, 1.0, 0.75, 0.5, 0.25}

// SpeedDuration is the total watch time at one playback speed.
type SpeedDuration struct {
	Multiplier float64
	Seconds    float64
}

// Key returns the multiplier in its shortest decimal form ("2", "1.75", "1").
func (s SpeedDuration) Key() string {
	return strconv.FormatFloat(s.Multiplier, 'f', -1, 64)
}

// Result is the aggregate over a playlist.
type Result struct {
	Total   int64           // seconds
	Count   int             // videos
	Average float64         // seconds, Total / Count
	Speeds  []SpeedDuration // one per PlaybackSpeeds entry, same order
}

// Aggregate sums the durations of videos and computes the average and the
// scaled totals. A duration that cannot be parsed fails the aggregation.
func Aggregate(videos []video.Video) (Result, error) {
	if len(videos) == 0 {
		return Result{}, ErrEmptyPlaylist
	}

	var total int64
	for _, v := range videos {
		seconds, err := duration.Parse(v.Duration)
		if err != nil {
			return Result{}, errors.Wrapf(err, "video %s", v.ID)
		}
		if seconds > math.MaxInt64-total {
			return Result{}, errors.Wrapf(ErrTotalOverflow, "at video %s", v.ID)
		}
		total += seconds
	}

	return Result{
		Total:   total,
		Count:   len(videos),
		Average: float64(total) / float64(len(videos)),
		Speeds:  Scale(total),
	}, nil
}

// Scale divides total by every playback speed.
func Scale(total int64) []SpeedDuration {
	speeds := make([]SpeedDuration, len(PlaybackSpeeds))
	for i, m := range PlaybackSpeeds {
		speeds[i] = SpeedDuration{
			Multiplier: m,
			Seconds:    float64(total) / m,
		}
	}
	return speeds
}

// At returns the scaled duration for the given multiplier.
func (r Result) At(multiplier float64) (float64, bool) {
	for _, s := range r.Speeds {
		if s.Multiplier == multiplier {
			return s.Seconds, true
		}
	}
	return 0, false
}
