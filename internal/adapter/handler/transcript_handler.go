package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/errors"
	"github.com/johnquangdev/radio-transcriber/internal/adapter/dto/transcript"
	"github.com/johnquangdev/radio-transcriber/internal/adapter/presenter"
	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/radio-transcriber/internal/usecase/errors"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pipeline"
)

// Transcript serves segmentation and transcript endpoints
type Transcript struct {
	service    *pipeline.Service
	audioDir   string
	extensions map[string]bool
	logger     *zap.Logger
}

// NewTranscriptHandler creates the transcript handler. Process requests may
// only name files under audioDir with one of the given extensions; no
// extensions means any file is accepted.
func NewTranscriptHandler(service *pipeline.Service, audioDir string, extensions []string, logger *zap.Logger) *Transcript {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	return &Transcript{service: service, audioDir: audioDir, extensions: exts, logger: logger}
}

// Segment godoc
// @Summary Segment an utterance list
// @Description Splits a transcript into episodes and attributes speakers without touching audio
// @Tags transcripts
// @Accept json
// @Produce json
// @Param request body transcript.SegmentRequest true "Utterances, optional tracks and duration"
// @Success 200 {object} transcript.SegmentResultResponse
// @Failure 400 {object} map[string]interface{}
// @Router /v1/segment [post]
func (h *Transcript) Segment(c echo.Context) error {
	var req transcript.SegmentRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
	}

	duration := entities.UnknownDuration
	if req.AudioDuration != nil {
		duration = *req.AudioDuration
	}
	segs := h.service.Engine().Run(presenter.ToUtterances(req.Utterances), presenter.ToTracks(req.Tracks), duration)
	return HandleSuccess(h.logger, c, presenter.ToSegmentResultResponse(segs))
}

// Process godoc
// @Summary Transcribe and segment an audio file
// @Description Produces the transcript of a file in the audio directory and stores the rendered episodes
// @Tags transcripts
// @Accept json
// @Produce json
// @Param request body transcript.ProcessRequest true "Audio path relative to the audio directory"
// @Success 200 {object} transcript.ProcessResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /v1/transcripts [post]
func (h *Transcript) Process(c echo.Context) error {
	var req transcript.ProcessRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
	}

	path, err := h.resolve(req.AudioPath)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	res, err := h.service.ProcessFile(c.Request().Context(), path, req.Force)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToProcessResponse(res))
}

// Get godoc
// @Summary Get a stored transcript
// @Tags transcripts
// @Produce json
// @Param name path string true "Transcript object name"
// @Success 200 {object} transcript.TranscriptTextResponse
// @Failure 404 {object} map[string]interface{}
// @Router /v1/transcripts/{name} [get]
func (h *Transcript) Get(c echo.Context) error {
	name := c.Param("name")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid transcript name"))
	}
	text, err := h.service.GetTranscript(c.Request().Context(), name)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, &transcript.TranscriptTextResponse{Name: name, Text: text})
}

// List godoc
// @Summary List processed transcripts
// @Description Pages through the run catalog; requires the database to be enabled
// @Tags transcripts
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} transcript.TranscriptListResponse
// @Failure 501 {object} map[string]interface{}
// @Router /v1/transcripts [get]
func (h *Transcript) List(c echo.Context) error {
	var req transcript.ListRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	records, total, err := h.service.ListTranscripts(c.Request().Context(), req.Page, req.PageSize)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToTranscriptListResponse(records, total, req.Page, req.PageSize))
}

// Combine godoc
// @Summary Combine all stored transcripts
// @Tags transcripts
// @Produce plain
// @Success 200 {string} string
// @Router /v1/transcripts/combined [get]
func (h *Transcript) Combine(c echo.Context) error {
	text, _, err := h.service.Combine(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return c.String(http.StatusOK, text)
}

// resolve maps a requested path into the audio directory
func (h *Transcript) resolve(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errors.ErrInvalidArgument("audio_path is required")
	}
	base, err := filepath.Abs(h.audioDir)
	if err != nil {
		return "", errors.ErrInternal(err)
	}
	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(base, full)
	}
	full = filepath.Clean(full)
	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.ErrInvalidArgument("audio_path must be inside the audio directory")
	}
	if len(h.extensions) > 0 && !h.extensions[strings.ToLower(filepath.Ext(full))] {
		return "", fmt.Errorf("%w: %s", usecaseErrors.ErrUnsupportedFormat, filepath.Ext(full))
	}
	return full, nil
}
