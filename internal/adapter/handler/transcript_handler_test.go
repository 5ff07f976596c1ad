package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/radio-transcriber/errors"
	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/infrastructure/storage"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pipeline"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
	"github.com/johnquangdev/radio-transcriber/pkg/validator"
)

type stubSource struct{ out *entities.SourceTranscript }

func (s stubSource) Produce(context.Context, string) (*entities.SourceTranscript, error) {
	return s.out, nil
}

func newTestServer(t *testing.T) (*echo.Echo, string) {
	t.Helper()
	audioDir := t.TempDir()
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	src := stubSource{out: &entities.SourceTranscript{
		Backend:  "stub",
		Duration: entities.UnknownDuration,
		Utterances: []entities.Utterance{
			entities.NewUntimedUtterance(0, "Buenos días, ¿cómo está usted?"),
			entities.NewUntimedUtterance(1, "Muy bien, gracias."),
		},
	}}
	svc := pipeline.NewService(pipeline.DefaultEngine(), src, store)

	e := echo.New()
	e.Validator = validator.New()
	cfg := &config.Config{App: config.AppConfig{Environment: "test"}}
	NewRouter(cfg, NewTranscriptHandler(svc, audioDir, []string{".m4a", "mp3"}, nil)).Setup(e)
	return e, audioDir
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t)
	rec := do(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"environment":"test"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSegmentEndpoint(t *testing.T) {
	e, _ := newTestServer(t)
	body := `{"utterances":[{"text":"Hola, buenos días."},{"text":"¿Qué tal está usted?"},{"text":"Muy bien, gracias."}]}`
	rec := do(e, http.MethodPost, "/v1/segment", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Segments []struct {
				Utterances []struct {
					Speaker string `json:"speaker"`
				} `json:"utterances"`
			} `json:"segments"`
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Segments) == 0 {
		t.Fatal("no segments returned")
	}
	total := 0
	for _, s := range resp.Data.Segments {
		for _, u := range s.Utterances {
			total++
			if u.Speaker == "" {
				t.Errorf("utterance without speaker")
			}
		}
	}
	if total != 3 {
		t.Errorf("utterances = %d, want 3", total)
	}
	if resp.Data.Text == "" {
		t.Error("rendered text is empty")
	}
}

func TestSegmentEndpointValidation(t *testing.T) {
	e, _ := newTestServer(t)
	cases := map[string]string{
		"no utterances":  `{"utterances":[]}`,
		"empty text":     `{"utterances":[{"text":""}]}`,
		"bad language":   `{"utterances":[{"text":"hola","language":"fr"}]}`,
		"bad duration":   `{"utterances":[{"text":"hola"}],"audio_duration":-1}`,
		"malformed json": `{"utterances":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/v1/segment", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestMalformedBodyIsInvalidPayload(t *testing.T) {
	e, _ := newTestServer(t)
	rec := do(e, http.MethodPost, "/v1/transcripts", `{"audio_path":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != int(errors.ErrorCode_INVALID_PAYLOAD) {
		t.Errorf("code = %d, want %d", body.Code, errors.ErrorCode_INVALID_PAYLOAD)
	}
}

func TestProcessEndpoint(t *testing.T) {
	e, audioDir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(audioDir, "show.m4a"), []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodPost, "/v1/transcripts", `{"audio_path":"show.m4a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"object_name":"show_transcript.txt"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/v1/transcripts/show_transcript.txt", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Muy bien") {
		t.Errorf("get body = %s", rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/v1/transcripts", `{"audio_path":"show.m4a"}`)
	if !strings.Contains(rec.Body.String(), `"skipped":true`) {
		t.Errorf("second run should skip, body = %s", rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/v1/transcripts/combined", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Muy bien") {
		t.Errorf("combined status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestProcessEndpointRejectsPaths(t *testing.T) {
	e, _ := newTestServer(t)
	cases := map[string]struct {
		body string
		code int
	}{
		"escape":  {`{"audio_path":"../secret.m4a"}`, http.StatusBadRequest},
		"missing": {`{"audio_path":"nope.m4a"}`, http.StatusNotFound},
		"empty":   {`{"audio_path":""}`, http.StatusBadRequest},
		"format":  {`{"audio_path":"notes.txt"}`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/v1/transcripts", tc.body)
			if rec.Code != tc.code {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.code, rec.Body.String())
			}
		})
	}
}

func TestGetMissingTranscript(t *testing.T) {
	e, _ := newTestServer(t)
	rec := do(e, http.MethodGet, "/v1/transcripts/absent_transcript.txt", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListWithoutCatalog(t *testing.T) {
	e, _ := newTestServer(t)
	rec := do(e, http.MethodGet, "/v1/transcripts?page=1&page_size=10", "")
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestNotImplementedWithoutHandler(t *testing.T) {
	e := echo.New()
	NewRouter(nil, nil).Setup(e)
	rec := do(e, http.MethodPost, "/v1/segment", `{}`)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestAPIKeyGuardsV1(t *testing.T) {
	e := echo.New()
	cfg := &config.Config{Server: config.ServerConfig{APIKey: "k"}}
	NewRouter(cfg, nil).Setup(e)

	if rec := do(e, http.MethodGet, "/v1/transcripts", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}
