// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/osa030/ytlength/internal/app/report"
	"github.com/osa030/ytlength/internal/infra/logger"
)

const (
	// PlaylistServiceName is the fully-qualified name of the PlaylistService.
	PlaylistServiceName = "ytlength.v1.PlaylistService"

	// GetPlaylistDurationProcedure is the procedure name of
	// PlaylistService.GetPlaylistDuration.
	GetPlaylistDurationProcedure = "/" + PlaylistServiceName + "/GetPlaylistDuration"
)

// errFetchMessage is returned to callers for every failed report.
const errFetchMessage = "Error fetching playlist items"

// Reporter builds the report of one playlist.
type Reporter interface {
	Build(ctx context.Context, playlistID string) (*report.Report, error)
}

// PlaylistService implements the PlaylistService RPC.
type PlaylistService struct {
	reporter Reporter
	timeout  time.Duration
}

// NewPlaylistService creates a new PlaylistService. A non-positive timeout
// leaves the request context untouched.
func NewPlaylistService(reporter Reporter, timeout time.Duration) *PlaylistService {
	return &PlaylistService{
		reporter: reporter,
		timeout:  timeout,
	}
}

// GetPlaylistDuration builds the report for the playlist ID in the request.
func (s *PlaylistService) GetPlaylistDuration(
	ctx context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[structpb.Struct], error) {
	playlistID := strings.TrimSpace(req.Msg.GetValue())
	if playlistID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("playlist ID is required"))
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := logger.FromContext(ctx)

	rep, err := s.reporter.Build(ctx, playlistID)
	if err != nil {
		log.Error().Err(err).Str("playlist_id", playlistID).Msg("failed to build playlist report")
		return nil, connect.NewError(connect.CodeInternal, errors.New(errFetchMessage))
	}

	msg, err := ReportToStruct(rep)
	if err != nil {
		log.Error().Err(err).Str("playlist_id", playlistID).Msg("failed to encode playlist report")
		return nil, connect.NewError(connect.CodeInternal, errors.New(errFetchMessage))
	}

	return connect.NewResponse(msg), nil
}

// NewPlaylistServiceHandler builds an HTTP handler for the service and
// returns the path to mount it on.
func NewPlaylistServiceHandler(svc *PlaylistService, opts ...connect.HandlerOption) (string, http.Handler) {
	handler := connect.NewUnaryHandler(
		GetPlaylistDurationProcedure,
		svc.GetPlaylistDuration,
		opts...,
	)

	mux := http.NewServeMux()
	mux.Handle(GetPlaylistDurationProcedure, handler)
	return "/" + PlaylistServiceName + "/", mux
}

// PlaylistClient is a client for the PlaylistService.
type PlaylistClient struct {
	getPlaylistDuration *connect.Client[wrapperspb.StringValue, structpb.Struct]
}

// NewPlaylistClient creates a client for the PlaylistService served at
// baseURL (for example http://localhost:3000).
func NewPlaylistClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PlaylistClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &PlaylistClient{
		getPlaylistDuration: connect.NewClient[wrapperspb.StringValue, structpb.Struct](
			httpClient,
			baseURL+GetPlaylistDurationProcedure,
			opts...,
		),
	}
}

// GetPlaylistDuration calls PlaylistService.GetPlaylistDuration.
func (c *PlaylistClient) GetPlaylistDuration(ctx context.Context, playlistID string) (*structpb.Struct, error) {
	resp, err := c.getPlaylistDuration.CallUnary(ctx, connect.NewRequest(wrapperspb.String(playlistID)))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// GetReport calls GetPlaylistDuration and decodes the answer into a Report.
func (c *PlaylistClient) GetReport(ctx context.Context, playlistID string) (*report.Report, error) {
	msg, err := c.GetPlaylistDuration(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return StructToReport(msg)
}

// ReportToStruct converts a report into the JSON-shaped Struct sent on the
// wire. Field names match the REST document.
func ReportToStruct(rep *report.Report) (*structpb.Struct, error) {
	if rep == nil {
		return nil, errors.New("report is nil")
	}

	data, err := json.Marshal(rep)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal report")
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal report")
	}

	msg, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build struct")
	}
	return msg, nil
}

// StructToReport decodes a Struct produced by ReportToStruct. Numbers
// arrive as float64 and are narrowed to the report's integer fields.
func StructToReport(msg *structpb.Struct) (*report.Report, error) {
	if msg == nil {
		return nil, errors.New("struct is nil")
	}

	var rep report.Report
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &rep,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(msg.AsMap()); err != nil {
		return nil, errors.Wrap(err, "failed to decode report")
	}
	return &rep, nil
}
