package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/safeecho/internal/alerts"
	"github.com/raysh454/safeecho/internal/classifier"
	"github.com/raysh454/safeecho/internal/detector"
	"github.com/raysh454/safeecho/internal/server"
	"github.com/raysh454/safeecho/internal/testutil"
)

type testEnv struct {
	srv   *server.Server
	eng   *detector.Engine
	store *alerts.Store
}

func newTestServer(t *testing.T, model classifier.Classifier, voice detector.VoiceScorer) *testEnv {
	t.Helper()

	logger := &testutil.DummyLogger{}
	store := alerts.NewStore(alerts.WithLogger(logger))

	var opts []detector.Option
	if voice != nil {
		opts = append(opts, detector.WithVoiceScorer(voice))
	}
	eng, err := detector.NewEngine(detector.DefaultConfig(), model, store, logger, opts...)
	require.NoError(t, err)

	srv, err := server.NewServer(server.DefaultConfig(), eng, store, logger)
	require.NoError(t, err)
	return &testEnv{srv: srv, eng: eng, store: store}
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), "body: %s", rec.Body.String())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// ─── Construction ──────────────────────────────────────────────────────

func TestNewServer_RequiresDependencies(t *testing.T) {
	t.Parallel()
	_, err := server.NewServer(server.DefaultConfig(), nil, alerts.NewStore(), nil)
	assert.Error(t, err)

	eng, err := detector.NewEngine(detector.DefaultConfig(), nil, alerts.NewStore(), &testutil.DummyLogger{})
	require.NoError(t, err)
	_, err = server.NewServer(server.DefaultConfig(), eng, nil, nil)
	assert.Error(t, err)
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, nil, nil)

	rec := doJSON(t, env.srv, "GET", "/api/status", "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_CORS_Preflight(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, nil, nil)

	rec := doJSON(t, env.srv, "OPTIONS", "/api/analyze/text", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Access-Control-Allow-Methods"))
}

// ─── Status ────────────────────────────────────────────────────────────

func TestServer_Status(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, nil, nil)

	rec := doJSON(t, env.srv, "GET", "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got server.StatusResponse
	decodeJSON(t, rec, &got)
	assert.Equal(t, "active", got.Status)
	assert.Equal(t, "monitoring", got.Guardian)
	assert.False(t, got.ModelLoaded)

	env.eng.SetModel(&testutil.StubClassifier{Probs: testutil.SpamProbs(0.1)})
	rec = doJSON(t, env.srv, "GET", "/api/status", "")
	decodeJSON(t, rec, &got)
	assert.True(t, got.ModelLoaded)
}

// ─── Analyze text ──────────────────────────────────────────────────────

func TestServer_AnalyzeText_BankFixtureEndToEnd(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, &testutil.StubClassifier{Probs: testutil.SpamProbs(0.02)}, nil)

	rec := doJSON(t, env.srv, "POST", "/api/analyze/text",
		mustJSON(t, server.AnalyzeTextRequest{Text: detector.BankImpersonationText}))
	require.Equal(t, http.StatusOK, rec.Code)

	var res map[string]any
	decodeJSON(t, rec, &res)
	assert.Equal(t, true, res["is_spam"])
	assert.Equal(t, 0.99, res["score"])
	assert.Equal(t, "Known scam pattern detected (Bank Impersonation).", res["reason"])

	rec = doJSON(t, env.srv, "GET", "/api/alerts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []alerts.Alert
	decodeJSON(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].ID)
	assert.Equal(t, alerts.TypeText, list[0].Type)
	assert.Equal(t, alerts.SeverityHigh, list[0].Severity)
	assert.Equal(t, alerts.StatusNew, list[0].Status)
	assert.Equal(t, detector.BankImpersonationText, list[0].Content)
}

func TestServer_AnalyzeText_BenignMessage(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, &testutil.StubClassifier{Probs: testutil.SpamProbs(0.1)}, nil)

	rec := doJSON(t, env.srv, "POST", "/api/analyze/text", `{"text":"see you at lunch"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res detector.TextResult
	decodeJSON(t, rec, &res)
	assert.False(t, res.IsSpam)
	assert.Equal(t, 0.1, res.Score)
	assert.Equal(t, detector.ReasonSafe, res.Reason)
	assert.Equal(t, 0, env.store.Len())
}

func TestServer_AnalyzeText_BadRequests(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, &testutil.StubClassifier{Probs: testutil.SpamProbs(0.1)}, nil)

	for _, body := range []string{`{"text":""}`, `{}`, `not json`} {
		rec := doJSON(t, env.srv, "POST", "/api/analyze/text", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)

		var e server.ErrorResponse
		decodeJSON(t, rec, &e)
		assert.NotEmpty(t, e.Error)
	}
}

func TestServer_AnalyzeText_ModelUnavailable(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, nil, nil)

	rec := doJSON(t, env.srv, "POST", "/api/analyze/text", `{"text":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 0, env.store.Len())
}

func TestServer_AnalyzeText_InvalidLabelSet(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, &testutil.StubClassifier{Probs: map[string]float64{"a": 0.3, "b": 0.7}}, nil)

	rec := doJSON(t, env.srv, "POST", "/api/analyze/text", `{"text":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var e server.ErrorResponse
	decodeJSON(t, rec, &e)
	assert.Contains(t, e.Error, "spam label")
}

func TestServer_AnalyzeText_ClassifierFailure(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, &testutil.StubClassifier{Err: errors.New("kaput")}, nil)

	rec := doJSON(t, env.srv, "POST", "/api/analyze/text", `{"text":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, env.store.Len())
}

func TestServer_AnalyzeText_EmailSourceStripsMarkup(t *testing.T) {
	t.Parallel()
	stub := &testutil.StubClassifier{Probs: testutil.SpamProbs(0.9)}
	env := newTestServer(t, stub, nil)

	body := mustJSON(t, server.AnalyzeTextRequest{
		Text:   "<html><head><title>x</title></head><body><p>Claim   your</p><script>evil()</script>\n<b>prize</b></body></html>",
		Source: "email",
	})
	rec := doJSON(t, env.srv, "POST", "/api/analyze/text", body)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, stub.Calls, 1)
	assert.Equal(t, "Claim your prize", stub.Calls[0])
	assert.Equal(t, "Claim your prize", env.store.List()[0].Content)
}

// ─── Analyze audio ─────────────────────────────────────────────────────

func TestServer_AnalyzeAudio_GrandparentFixtureEndToEnd(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, &testutil.StubClassifier{Probs: testutil.SpamProbs(0.02)}, nil)

	rec := doJSON(t, env.srv, "POST", "/api/analyze/audio",
		mustJSON(t, server.AnalyzeAudioRequest{Transcript: detector.GrandparentScamCall}))
	require.Equal(t, http.StatusOK, rec.Code)

	var res map[string]any
	decodeJSON(t, rec, &res)
	assert.Equal(t, true, res["is_scam"])
	assert.Equal(t, true, res["is_deepfake"])
	assert.Equal(t, 0.98, res["transcript_score"])
	assert.Equal(t, 0.95, res["voice_score"])
	assert.Equal(t, []any{"Emergency Scam Pattern (Grandparent Scam)", "Artificial Voice Detected"}, res["reason"])

	list := env.store.List()
	require.Len(t, list, 1)
	assert.Equal(t, alerts.TypeCall, list[0].Type)
	assert.Equal(t, "Emergency Scam Pattern (Grandparent Scam), Artificial Voice Detected", list[0].Reason)
}

func TestServer_AnalyzeAudio_PassesFeatures(t *testing.T) {
	t.Parallel()
	voice := &testutil.FixedVoiceScorer{Score: 0.2}
	env := newTestServer(t, &testutil.StubClassifier{Probs: testutil.SpamProbs(0.1)}, voice)

	rec := doJSON(t, env.srv, "POST", "/api/analyze/audio",
		`{"transcript":"dinner at six","audio_features":{"pitch_var":0.4}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res detector.AudioResult
	decodeJSON(t, rec, &res)
	assert.False(t, res.IsScam)
	assert.False(t, res.IsDeepfake)
	assert.Equal(t, []string{}, res.Reasons)

	require.Len(t, voice.Samples, 1)
	assert.Equal(t, 0.4, voice.Samples[0].Features["pitch_var"])
}

func TestServer_AnalyzeAudio_EmptyReasonsEncodeAsArray(t *testing.T) {
	t.Parallel()
	voice := &testutil.FixedVoiceScorer{Score: 0.2}
	env := newTestServer(t, &testutil.StubClassifier{Probs: testutil.SpamProbs(0.1)}, voice)

	rec := doJSON(t, env.srv, "POST", "/api/analyze/audio", `{"transcript":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reason":[]`)
}

func TestServer_AnalyzeAudio_BadRequests(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, nil, nil)

	rec := doJSON(t, env.srv, "POST", "/api/analyze/audio", `{"transcript":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.srv, "POST", "/api/analyze/audio", `{"transcript":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// ─── Alerts ────────────────────────────────────────────────────────────

func TestServer_ListAlerts_EmptyIsArray(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, nil, nil)

	rec := doJSON(t, env.srv, "GET", "/api/alerts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServer_ClearAlerts(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, &testutil.StubClassifier{Probs: testutil.SpamProbs(0.9)}, nil)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, env.srv, "POST", "/api/analyze/text", `{"text":"free money"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Equal(t, 3, env.store.Len())

	rec := doJSON(t, env.srv, "POST", "/api/alerts/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"cleared"}`, rec.Body.String())
	assert.Equal(t, 0, env.store.Len())

	rec = doJSON(t, env.srv, "POST", "/api/analyze/text", `{"text":"free money"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.store.List()[0].ID)
}

func TestServer_AlertsWS_StreamsNewAlerts(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, &testutil.StubClassifier{Probs: testutil.SpamProbs(0.9)}, nil)

	ts := httptest.NewServer(env.srv)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/alerts"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// The subscription is registered after the upgrade; retry until it is.
	deadline := time.Now().Add(2 * time.Second)
	var got alerts.Alert
	for {
		_, err := env.eng.ClassifyText(context.Background(), "win a cruise")
		require.NoError(t, err)

		_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		if err := conn.ReadJSON(&got); err == nil {
			break
		}
		require.True(t, time.Now().Before(deadline), "no alert received over websocket")
		// A timed-out read poisons the connection; redial.
		conn.Close()
		conn, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, alerts.TypeText, got.Type)
	assert.Equal(t, "win a cruise", got.Content)
}

// ─── Docs and static ───────────────────────────────────────────────────

func TestServer_DocsRedirect(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, nil, nil)

	rec := doJSON(t, env.srv, "GET", "/docs", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/docs/index.html", rec.Header().Get("Location"))
}

func TestServer_DocsJSON(t *testing.T) {
	t.Parallel()
	env := newTestServer(t, nil, nil)

	rec := doJSON(t, env.srv, "GET", "/docs/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/analyze/text")
}

func TestServer_StaticDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>dashboard</h1>"), 0o644))

	logger := &testutil.DummyLogger{}
	store := alerts.NewStore()
	eng, err := detector.NewEngine(detector.DefaultConfig(), nil, store, logger)
	require.NoError(t, err)

	cfg := server.DefaultConfig()
	cfg.StaticDir = dir
	srv, err := server.NewServer(cfg, eng, store, logger)
	require.NoError(t, err)

	rec := doJSON(t, srv, "GET", "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard")

	rec = doJSON(t, srv, "GET", "/api/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_BodyTooLarge(t *testing.T) {
	t.Parallel()
	logger := &testutil.DummyLogger{}
	store := alerts.NewStore()
	eng, err := detector.NewEngine(detector.DefaultConfig(), nil, store, logger)
	require.NoError(t, err)

	cfg := server.DefaultConfig()
	cfg.MaxBodyBytes = 16
	srv, err := server.NewServer(cfg, eng, store, logger)
	require.NoError(t, err)

	rec := doJSON(t, srv, "POST", "/api/analyze/text", `{"text":"this body is definitely longer than sixteen bytes"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
