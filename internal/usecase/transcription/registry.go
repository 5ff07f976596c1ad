package transcription

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	usecaseErrors "github.com/johnquangdev/radio-transcriber/internal/usecase/errors"
	"github.com/johnquangdev/radio-transcriber/pkg/ai"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// BackendsFromConfig builds the ordered backend list named by
// TRANSCRIBE_BACKENDS. Backends without credentials are skipped with a warning.
// The prefix backend is the first configured backend able to transcribe clips.
func BackendsFromConfig(cfg *config.Config, logger *zap.Logger) ([]Backend, PrefixBackend, error) {
	var (
		backends []Backend
		prefix   PrefixBackend
	)
	for _, raw := range cfg.Transcription.Backends {
		name := strings.ToLower(strings.TrimSpace(raw))
		var b Backend
		switch name {
		case ai.BackendAssemblyAI:
			if cfg.Assembly.APIKey == "" {
				skipBackend(logger, name, "ASSEMBLYAI_API_KEY is not set")
				continue
			}
			b = ai.NewAssemblyAISource(cfg, logger)
		case ai.BackendOpenAI:
			if cfg.OpenAI.APIKey == "" {
				skipBackend(logger, name, "OPENAI_API_KEY is not set")
				continue
			}
			b = ai.NewOpenAISource(cfg, logger)
		case "":
			continue
		default:
			return nil, nil, fmt.Errorf("%w: %s", usecaseErrors.ErrUnknownBackend, raw)
		}

		backends = append(backends, b)
		if pb, ok := b.(PrefixBackend); ok && prefix == nil {
			prefix = pb
		}
	}
	return backends, prefix, nil
}

func skipBackend(logger *zap.Logger, name, reason string) {
	if logger != nil {
		logger.Warn("transcription backend skipped",
			zap.String("backend", name),
			zap.String("reason", reason),
		)
	}
}
