// Package collector walks a playlist page by page and resolves the videos
// of every page with one batched detail lookup.
package collector

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/osa030/ytlength/internal/domain/video"
	"github.com/osa030/ytlength/internal/infra/logger"
	"github.com/osa030/ytlength/internal/infra/metrics"
	"github.com/osa030/ytlength/internal/infra/telemetry"
)

// DefaultPageSize is the page size requested from the playlist listing.
const DefaultPageSize = 50

// ErrPageTokenLoop is returned when upstream hands back a page token that was
// already requested for this playlist, which would otherwise page forever.
var ErrPageTokenLoop = errors.New("upstream returned a repeated page token")

// VideoSource defines the upstream operations the collector needs.
type VideoSource interface {
	ListPlaylistItems(ctx context.Context, playlistID, pageToken string, pageSize int) (*video.Page, error)
	GetVideos(ctx context.Context, ids []string) ([]video.Video, error)
}

// Collector gathers every video of a playlist.
type Collector struct {
	source   VideoSource
	pageSize int
}

// New creates a new Collector. A non-positive pageSize selects DefaultPageSize.
func New(source VideoSource, pageSize int) *Collector {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Collector{
		source:   source,
		pageSize: pageSize,
	}
}

// CollectAll returns the videos of a playlist in playlist order.
// Pages are fetched one after another, each followed by a single detail
// lookup for that page. Any upstream error aborts the whole collection.
func (c *Collector) CollectAll(ctx context.Context, playlistID string) ([]video.Video, error) {
	ctx, span := telemetry.Tracer("ytlength/collector").Start(ctx, "collector.CollectAll")
	defer span.End()
	span.SetAttributes(attribute.String("playlist.id", playlistID))

	log := logger.FromContext(ctx)

	var videos []video.Video
	pageToken := ""
	pageNo := 0
	seen := map[string]struct{}{}

	for {
		pageNo++
		seen[pageToken] = struct{}{}
		page, err := c.source.ListPlaylistItems(ctx, playlistID, pageToken, c.pageSize)
		if err != nil {
			span.RecordError(err)
			return nil, errors.Wrapf(err, "failed to list playlist items (page %d)", pageNo)
		}
		metrics.CollectorPages.Inc()

		details, err := c.FetchDetails(ctx, video.IDs(page.Items))
		if err != nil {
			span.RecordError(err)
			return nil, errors.Wrapf(err, "failed to fetch video details (page %d)", pageNo)
		}
		videos = append(videos, details...)

		log.Debug().Msgf("collected page: playlist=%s page=%d items=%d videos=%d total_so_far=%d",
			playlistID, pageNo, len(page.Items), len(details), len(videos))

		if page.IsLast() {
			break
		}
		if _, ok := seen[page.NextPageToken]; ok {
			return nil, errors.Wrapf(ErrPageTokenLoop, "token %q after page %d", page.NextPageToken, pageNo)
		}
		pageToken = page.NextPageToken
	}

	span.SetAttributes(
		attribute.Int("collector.pages", pageNo),
		attribute.Int("collector.videos", len(videos)),
	)
	metrics.CollectorItems.Observe(float64(len(videos)))
	log.Debug().Msgf("playlist collected: playlist=%s pages=%d videos=%d", playlistID, pageNo, len(videos))

	if videos == nil {
		videos = []video.Video{}
	}
	return videos, nil
}

// FetchDetails resolves the given video IDs with a single upstream call.
// The result follows the order of ids; IDs upstream did not return are
// skipped and repeated IDs yield repeated entries.
func (c *Collector) FetchDetails(ctx context.Context, ids []string) ([]video.Video, error) {
	if len(ids) == 0 {
		return []video.Video{}, nil
	}

	fetched, err := c.source.GetVideos(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]video.Video, len(fetched))
	for _, v := range fetched {
		byID[v.ID] = v
	}

	ordered := make([]video.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, nil
}
