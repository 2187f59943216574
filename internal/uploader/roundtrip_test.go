package uploader_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"

	"io.winapps.snapquip/internal/config"
	"io.winapps.snapquip/internal/handlers"
	"io.winapps.snapquip/internal/relay"
	"io.winapps.snapquip/internal/server"
	"io.winapps.snapquip/internal/uploader"
)

// startStack runs upstream stub -> relay -> uploader over real HTTP
func startStack(t *testing.T, upstream http.HandlerFunc) *uploader.Uploader {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstreamSrv := httptest.NewServer(upstream)
	t.Cleanup(upstreamSrv.Close)

	cfg := &config.Config{
		Port:         config.DefaultPort,
		APIKey:       "sk-ant-api03-roundtrip",
		BaseURL:      upstreamSrv.URL,
		APIVersion:   config.DefaultAPIVersion,
		MaxBodyBytes: config.DefaultMaxBodyBytes,
	}
	logger := zaptest.NewLogger(t).Sugar()

	relayTransport := &http.Transport{}
	t.Cleanup(relayTransport.CloseIdleConnections)
	r := relay.New(cfg, option.WithHTTPClient(&http.Client{Transport: relayTransport}))

	relaySrv := httptest.NewServer(server.NewRouter(cfg, handlers.NewAnalyzeHandler(cfg, r, logger), logger))
	t.Cleanup(relaySrv.Close)

	clientTransport := &http.Transport{}
	t.Cleanup(clientTransport.CloseIdleConnections)

	return uploader.New(uploader.Config{
		RelayURL:   relaySrv.URL,
		HTTPClient: &http.Client{Transport: clientTransport},
		Previewer:  uploader.TempFilePreviewer{Dir: t.TempDir()},
		Logger:     logger,
	})
}

func TestNiceHatRoundTrip(t *testing.T) {
	jpeg := make([]byte, 10*1024)
	copy(jpeg, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00})

	var upstreamSaw []byte
	u := startStack(t, func(w http.ResponseWriter, r *http.Request) {
		upstreamSaw, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"content":[{"text":"Nice hat."}]}`)
	})

	require.NoError(t, u.Select(uploader.File{Name: "hat.jpg", MediaType: "image/jpeg", Size: int64(len(jpeg)), Data: jpeg}))
	text, err := u.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Nice hat.", text)

	var out bytes.Buffer
	require.NoError(t, uploader.Render(&out, u.View()))
	assert.Contains(t, out.String(), "Nice hat.")
	assert.NotContains(t, out.String(), "Error:")

	// The upstream received the image bytes unchanged
	data := gjson.GetBytes(upstreamSaw, "messages.0.content.0.source.data").String()
	decoded, err := uploader.DecodePayload(data)
	require.NoError(t, err)
	assert.Equal(t, jpeg, decoded)

	u.Clear()
}

func TestUpstreamRejectionShowsGenericError(t *testing.T) {
	u := startStack(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	})

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}
	require.NoError(t, u.Select(uploader.File{Name: "hat.jpg", MediaType: "image/jpeg", Size: int64(len(jpeg)), Data: jpeg}))

	_, err := u.Submit(context.Background())
	var statusErr *uploader.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, string(statusErr.Body), "authentication_error")

	v := u.View()
	assert.Equal(t, uploader.Failed, v.State)
	assert.Equal(t, uploader.MsgSubmitFailed, v.Error)

	u.Clear()
}
