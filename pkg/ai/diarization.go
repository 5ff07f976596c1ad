package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "github.com/johnquangdev/radio-transcriber/errors"
	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// DiarizationClient calls an acoustic diarization service that accepts a
// multipart audio upload on /diarize and answers with speaker segments.
type DiarizationClient struct {
	url    string
	client *http.Client
}

type diarizationSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

type diarizationResponse struct {
	Segments []diarizationSegment `json:"segments"`
}

// NewDiarizationClient returns nil when no service URL is configured
func NewDiarizationClient(cfg *config.DiarizationConfig) *DiarizationClient {
	if cfg == nil || strings.TrimSpace(cfg.URL) == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &DiarizationClient{
		url:    strings.TrimRight(cfg.URL, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// Diarize uploads the audio file and returns speaker tracks ordered by start time
func (d *DiarizationClient) Diarize(ctx context.Context, audioPath string) ([]entities.SpeakerTrack, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	fd, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", audioPath, err)
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}
	if err = w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url+"/diarize", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrExternalAPIFailed("diarization", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		const maxErr = 4096
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErr))
		return nil, apperrors.ErrExternalAPIFailed("diarization",
			fmt.Errorf("diarize %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}

	var out diarizationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.ErrExternalAPIFailed("diarization", fmt.Errorf("diarize decode: %w", err))
	}

	tracks := make([]entities.SpeakerTrack, 0, len(out.Segments))
	for _, s := range out.Segments {
		if s.Speaker == "" || s.End <= s.Start {
			continue
		}
		tracks = append(tracks, entities.SpeakerTrack{TrackID: s.Speaker, StartTime: s.Start, EndTime: s.End})
	}
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].StartTime < tracks[j].StartTime })
	return tracks, nil
}
