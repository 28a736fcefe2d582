package link

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"campus/config"
	"campus/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLinks captures every URL handed to the dispatcher.
type recordingLinks struct {
	mu   sync.Mutex
	urls []string
}

func (r *recordingLinks) Normalize(raw string) (entity.NormalizedLink, error) {
	return entity.NormalizedLink{Path: raw}, nil
}

func (r *recordingLinks) Dispatch(_ context.Context, _ entity.NormalizedLink) {}

func (r *recordingLinks) HandleURL(_ context.Context, raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, raw)
}

func (r *recordingLinks) handled() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.urls...)
}

func newTestServer(t *testing.T) (*linkServer, *recordingLinks) {
	t.Helper()

	links := &recordingLinks{}
	cfg := &config.Config{
		Links: &config.LinksConfig{Scheme: "campus", ListenPort: 0},
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.Validator = newValidator()

	srv := &linkServer{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		links:  links,
		server: echoServer,
	}
	echoServer.POST("/links", srv.handleLink)

	return srv, links
}

func TestLinkServer_HandleLink(t *testing.T) {
	t.Parallel()

	t.Run("forwards the URL to the dispatcher", func(t *testing.T) {
		t.Parallel()

		srv, links := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/links", strings.NewReader(`{"url":"campus://reset-password?token=abc"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		srv.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		require.Len(t, links.handled(), 1)
		assert.Equal(t, "campus://reset-password?token=abc", links.handled()[0])
	})

	t.Run("rejects a payload without a url", func(t *testing.T) {
		t.Parallel()

		srv, links := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/links", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		srv.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, links.handled())
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		srv, links := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/links", strings.NewReader(`{"url":`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		srv.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, links.handled())
	})
}
