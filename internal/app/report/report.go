// Package report builds the duration report of one playlist.
package report

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/osa030/ytlength/internal/app/aggregate"
	"github.com/osa030/ytlength/internal/app/collector"
	"github.com/osa030/ytlength/internal/domain/duration"
	"github.com/osa030/ytlength/internal/domain/playlist"
	"github.com/osa030/ytlength/internal/infra/logger"
	"github.com/osa030/ytlength/internal/infra/metrics"
	"github.com/osa030/ytlength/internal/infra/telemetry"
)

// Source defines the upstream operations needed to build a report.
type Source interface {
	collector.VideoSource
	GetPlaylists(ctx context.Context, playlistID string) ([]playlist.Playlist, error)
}

// Report is the response document for one playlist.
type Report struct {
	PlaylistInfo    []playlist.Playlist `json:"playlistInfo"`
	ItemCount       int                 `json:"itemCount"`
	TotalDuration   string              `json:"totalDuration"`
	AverageDuration string              `json:"averageDuration"`
	PlaybackSpeeds  map[string]string   `json:"playbackSpeeds"`
}

// Service builds reports. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	source    Source
	collector *collector.Collector
}

// NewService creates a new report service.
func NewService(source Source, pageSize int) *Service {
	return &Service{
		source:    source,
		collector: collector.New(source, pageSize),
	}
}

// Build collects the playlist, fetches its metadata, aggregates the
// durations and formats the result. Any failure aborts the report.
func (s *Service) Build(ctx context.Context, playlistID string) (rep *Report, err error) {
	ctx, span := telemetry.Tracer("ytlength/report").Start(ctx, "report.Build")
	defer span.End()
	span.SetAttributes(attribute.String("playlist.id", playlistID))
	defer func() {
		metrics.ObserveReport(err)
		if err != nil {
			span.RecordError(err)
		}
	}()

	if playlistID == "" {
		return nil, errors.New("playlist ID is required")
	}

	videos, err := s.collector.CollectAll(ctx, playlistID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to collect playlist")
	}

	info, err := s.source.GetPlaylists(ctx, playlistID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch playlist info")
	}

	result, err := aggregate.Aggregate(videos)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate durations")
	}

	rep = Format(info, result)

	log := logger.FromContext(ctx)
	log.Info().Msgf("playlist report: playlist=%s videos=%d total=%s average=%s",
		playlistID, rep.ItemCount, rep.TotalDuration, rep.AverageDuration)
	for _, sp := range result.Speeds {
		log.Debug().Msgf("  %sx: %s", sp.Key(), rep.PlaybackSpeeds[sp.Key()])
	}

	return rep, nil
}

// Format renders an aggregate as a Report.
func Format(info []playlist.Playlist, result aggregate.Result) *Report {
	if info == nil {
		info = []playlist.Playlist{}
	}

	speeds := make(map[string]string, len(result.Speeds))
	for _, sp := range result.Speeds {
		speeds[sp.Key()] = duration.Format(sp.Seconds)
	}

	return &Report{
		PlaylistInfo:    info,
		ItemCount:       result.Count,
		TotalDuration:   duration.Format(float64(result.Total)),
		AverageDuration: duration.Format(result.Average),
		PlaybackSpeeds:  speeds,
	}
}
