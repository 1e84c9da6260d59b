// Package youtube wraps the YouTube Data API v3 SDK and converts its
// resources into domain types.
package youtube

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/osa030/ytlength/internal/domain/playlist"
	"github.com/osa030/ytlength/internal/domain/video"
	"github.com/osa030/ytlength/internal/infra/metrics"
)

// DefaultBaseURL is the root of the public YouTube Data API. Resource paths
// ("youtube/v3/videos", ...) are resolved against it.
const DefaultBaseURL = "https://youtube.googleapis.com/" // same value as the SDK's unexported basePath

// MaxPageSize is the largest maxResults value the API accepts, and the
// largest number of IDs a single videos.list call may carry.
const MaxPageSize = 50

// Endpoint names, used in errors and metric labels.
const (
	EndpointPlaylistItems = "playlistItems"
	EndpointVideos        = "videos"
	EndpointPlaylists     = "playlists"
)

const playlistFields = "items(id,snippet(title,description,thumbnails),contentDetails)"

// Client is a YouTube Data API client authenticated with a static API key.
// It is safe for concurrent use.
type Client struct {
	service *yt.Service
	baseURL string
}

// Config represents YouTube client configuration.
type Config struct {
	APIKey    string
	BaseURL   string            // defaults to DefaultBaseURL
	Timeout   time.Duration     // per call; defaults to 10s
	Transport http.RoundTripper // optional base transport; defaults to http.DefaultTransport
}

// New creates a new YouTube client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("youtube API key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = strings.TrimRight(DefaultBaseURL, "/")
	}
	baseURL += "/"

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	// A caller-supplied HTTP client bypasses the SDK's own auth setup, so the
	// key is attached by the transport.
	httpClient := &http.Client{
		Transport: &transport.APIKey{
			Key:       cfg.APIKey,
			Transport: otelhttp.NewTransport(base),
		},
		Timeout: timeout,
	}

	service, err := yt.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(baseURL),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create youtube service")
	}

	return &Client{
		service: service,
		baseURL: baseURL,
	}, nil
}

// ListPlaylistItems retrieves one page of a playlist's items.
// An empty pageToken requests the first page.
// Reference: https://developers.google.com/youtube/v3/docs/playlistItems/list
func (c *Client) ListPlaylistItems(ctx context.Context, playlistID, pageToken string, pageSize int) (page *video.Page, err error) {
	if playlistID == "" {
		return nil, errors.New("playlist ID is required")
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	defer observe(EndpointPlaylistItems, time.Now(), &err)

	call := c.service.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(int64(pageSize)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Do()
	if err != nil {
		return nil, newRequestError(EndpointPlaylistItems, err)
	}

	page = &video.Page{
		Items:         make([]video.PlaylistItem, 0, len(response.Items)),
		NextPageToken: response.NextPageToken,
	}
	if response.PageInfo != nil {
		page.TotalResults = int(response.PageInfo.TotalResults)
	}
	for _, item := range response.Items {
		if item == nil || item.ContentDetails == nil {
			continue
		}
		page.Items = append(page.Items, video.PlaylistItem{VideoID: item.ContentDetails.VideoId})
	}

	return page, nil
}

// GetVideos retrieves the details of up to MaxPageSize videos in one call.
// Videos the API does not return (deleted or private) are simply absent.
// Reference: https://developers.google.com/youtube/v3/docs/videos/list
func (c *Client) GetVideos(ctx context.Context, ids []string) (videos []video.Video, err error) {
	if len(ids) == 0 {
		return []video.Video{}, nil
	}
	if len(ids) > MaxPageSize {
		return nil, errors.Newf("at most %d video IDs per call, got %d", MaxPageSize, len(ids))
	}

	defer observe(EndpointVideos, time.Now(), &err)

	response, err := c.service.Videos.List([]string{"contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, newRequestError(EndpointVideos, err)
	}

	videos = make([]video.Video, 0, len(response.Items))
	for _, item := range response.Items {
		if item == nil {
			continue
		}
		v := video.Video{ID: item.Id}
		if item.ContentDetails != nil {
			v.Duration = item.ContentDetails.Duration
		}
		videos = append(videos, v)
	}

	return videos, nil
}

// GetPlaylists retrieves the metadata of a playlist. The API returns an
// empty list for unknown IDs.
// Reference: https://developers.google.com/youtube/v3/docs/playlists/list
func (c *Client) GetPlaylists(ctx context.Context, playlistID string) (playlists []playlist.Playlist, err error) {
	if playlistID == "" {
		return nil, errors.New("playlist ID is required")
	}

	defer observe(EndpointPlaylists, time.Now(), &err)

	response, err := c.service.Playlists.List([]string{"snippet", "contentDetails"}).
		Id(playlistID).
		Fields(googleapi.Field(playlistFields)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, newRequestError(EndpointPlaylists, err)
	}

	playlists = make([]playlist.Playlist, 0, len(response.Items))
	for _, item := range response.Items {
		if item == nil {
			continue
		}
		playlists = append(playlists, convertPlaylist(item))
	}

	return playlists, nil
}

// observe records one upstream call. err points at the caller's named
// result so the outcome is read after the call returns.
func observe(endpoint string, start time.Time, err *error) {
	metrics.ObserveUpstream(endpoint, start, *err)
	if *err == nil {
		zlog.Debug().Msgf("youtube %s: elapsed=%s", endpoint, time.Since(start))
	}
}

func convertPlaylist(item *yt.Playlist) playlist.Playlist {
	p := playlist.Playlist{ID: item.Id}
	if item.ContentDetails != nil {
		p.ContentDetails.ItemCount = int(item.ContentDetails.ItemCount)
	}
	if s := item.Snippet; s != nil {
		p.Snippet.Title = s.Title
		p.Snippet.Description = s.Description
		p.Snippet.Thumbnails = convertThumbnails(s.Thumbnails)
	}
	return p
}

func convertThumbnails(details *yt.ThumbnailDetails) map[string]playlist.Thumbnail {
	if details == nil {
		return nil
	}
	thumbnails := make(map[string]playlist.Thumbnail)
	for size, t := range map[string]*yt.Thumbnail{
		"default":  details.Default,
		"medium":   details.Medium,
		"high":     details.High,
		"standard": details.Standard,
		"maxres":   details.Maxres,
	} {
		if t == nil {
			continue
		}
		thumbnails[size] = playlist.Thumbnail{
			URL:    t.Url,
			Width:  int(t.Width),
			Height: int(t.Height),
		}
	}
	if len(thumbnails) == 0 {
		return nil
	}
	return thumbnails
}
