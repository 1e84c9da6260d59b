package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/ytlength/internal/app/report"
	"github.com/osa030/ytlength/internal/domain/playlist"
	"github.com/osa030/ytlength/internal/infra/metrics"
	"github.com/osa030/ytlength/internal/infra/youtube"
)

type fakeReporter struct {
	report      *report.Report
	err         error
	gotID       string
	hadDeadline bool
	panicMsg    string
}

func (f *fakeReporter) Build(ctx context.Context, playlistID string) (*report.Report, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.gotID = playlistID
	_, f.hadDeadline = ctx.Deadline()
	return f.report, f.err
}

func serve(t *testing.T, h *Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)
	return rec
}

func TestHello(t *testing.T) {
	rec := serve(t, NewHandler(&fakeReporter{}, 0), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World!", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestHealthz(t *testing.T) {
	rec := serve(t, NewHandler(&fakeReporter{}, 0), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewHandler(&fakeReporter{}, 0)
	serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))

	rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ytlength_http_request_duration_seconds")
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.HTTPRequestsInFlight))
}

func TestGetPlaylistDuration(t *testing.T) {
	expected := &report.Report{
		PlaylistInfo:    []playlist.Playlist{{ID: "PL123", Snippet: playlist.Snippet{Title: "Go talks"}}},
		ItemCount:       2,
		TotalDuration:   "0:03:00",
		AverageDuration: "0:01:30",
		PlaybackSpeeds:  map[string]string{"1": "0:03:00", "2": "0:01:30"},
	}
	reporter := &fakeReporter{report: expected}

	rec := serve(t, NewHandler(reporter, time.Minute), httptest.NewRequest(http.MethodGet, "/api/PL123", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "PL123", reporter.gotID)
	assert.True(t, reporter.hadDeadline, "request timeout must bound the build")

	var got report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	if diff := cmp.Diff(expected, &got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestGetPlaylistDuration_Failure(t *testing.T) {
	reporter := &fakeReporter{err: errors.New("youtube playlistItems request failed (status 404)")}

	rec := serve(t, NewHandler(reporter, 0), httptest.NewRequest(http.MethodGet, "/api/PLmissing", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrFetchMessage, rec.Body.String())
	assert.False(t, reporter.hadDeadline, "no timeout configured")
}

func TestRequestID(t *testing.T) {
	h := NewHandler(&fakeReporter{}, 0)

	rec := serve(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(HeaderRequestID), 36, "a uuid is generated when absent")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec = serve(t, h, req)
	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
}

func TestRecoverer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/PL123", nil)
	req.Header.Set(HeaderRequestID, "req-panic")

	rec := serve(t, NewHandler(&fakeReporter{panicMsg: "boom"}, 0), req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrFetchMessage, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "req-panic", rec.Header().Get(HeaderRequestID))
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(t, NewHandler(&fakeReporter{}, 0), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// fakeYouTube serves a two-page playlist with PT1M and PT2M videos.
func fakeYouTube(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		switch r.URL.Path {
		case "/youtube/v3/playlistItems":
			if q.Get("playlistId") != "PL123" {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"error":{"code":404,"message":"not found","errors":[{"reason":"playlistNotFound"}]}}`)
				return
			}
			if q.Get("pageToken") == "" {
				fmt.Fprint(w, `{"nextPageToken":"P2","items":[{"contentDetails":{"videoId":"a"}}]}`)
				return
			}
			fmt.Fprint(w, `{"items":[{"contentDetails":{"videoId":"b"}}]}`)
		case "/youtube/v3/videos":
			var items []string
			for _, id := range q["id"] {
				d := map[string]string{"a": "PT1M", "b": "PT2M"}[id]
				items = append(items, fmt.Sprintf(`{"id":%q,"contentDetails":{"duration":%q}}`, id, d))
			}
			fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(items, ","))
		case "/youtube/v3/playlists":
			fmt.Fprint(w, `{"items":[{"id":"PL123","snippet":{"title":"Go talks"},"contentDetails":{"itemCount":2}}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestEndToEnd(t *testing.T) {
	upstream := fakeYouTube(t)
	client, err := youtube.New(context.Background(), youtube.Config{APIKey: "test_key", BaseURL: upstream.URL})
	require.NoError(t, err)
	router := NewRouter(NewHandler(report.NewService(client, 1), 5*time.Second))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		check      func(t *testing.T, body []byte)
	}{
		{
			name:       "two page playlist",
			path:       "/api/PL123",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var doc map[string]any
				require.NoError(t, json.Unmarshal(body, &doc))
				assert.Equal(t, float64(2), doc["itemCount"])
				assert.Equal(t, "0:03:00", doc["totalDuration"])
				assert.Equal(t, "0:01:30", doc["averageDuration"])
				speeds := doc["playbackSpeeds"].(map[string]any)
				assert.Equal(t, "0:03:00", speeds["1"])
				assert.Equal(t, "0:01:30", speeds["2"])
				assert.Equal(t, "0:06:00", speeds["0.5"])
				info := doc["playlistInfo"].([]any)
				require.Len(t, info, 1)
				assert.Equal(t, "PL123", info[0].(map[string]any)["id"])
			},
		},
		{
			name:       "unknown playlist",
			path:       "/api/PLmissing",
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body []byte) {
				assert.Equal(t, ErrFetchMessage, string(body))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
			tt.check(t, rec.Body.Bytes())
		})
	}
}
