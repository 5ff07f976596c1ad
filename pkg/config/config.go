package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	App           AppConfig           `envconfig:"APP"`
	Server        ServerConfig        `envconfig:"SERVER"`
	Input         InputConfig         `envconfig:"INPUT"`
	Segmentation  SegmentationConfig  `envconfig:"SEGMENT"`
	Transcription TranscriptionConfig `envconfig:"TRANSCRIBE"`
	OpenAI        OpenAIConfig        `envconfig:"OPENAI"`
	Assembly      AssemblyAIConfig    `envconfig:"ASSEMBLYAI"`
	Groq          GroqConfig          `envconfig:"GROQ"`
	Diarization   DiarizationConfig   `envconfig:"DIARIZATION"`
	Media         MediaConfig         `envconfig:"MEDIA"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Storage       StorageConfig       `envconfig:"STORAGE"`
	Database      DatabaseConfig      `envconfig:"DB"`

	Phrases Phrasebook `ignored:"true"`
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Environment string `envconfig:"ENV" default:"development" validate:"oneof=development staging production test"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080" validate:"required"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// APIKey, when set, is required as a bearer token on /v1 routes
	APIKey string `envconfig:"API_KEY"`
}

// InputConfig describes where audio comes from and how a batch runs
type InputConfig struct {
	AudioDir      string   `envconfig:"AUDIO_DIR" default:"audio"`
	Extensions    []string `envconfig:"EXTENSIONS" default:".m4a,.mp3,.wav,.ogg,.flac"`
	SidecarSuffix string   `envconfig:"SIDECAR_SUFFIX" default:".utterances.json"`
	Workers       int      `envconfig:"WORKERS" default:"1" validate:"min=1,max=64"`
	MaxRetries    int      `envconfig:"MAX_RETRIES" default:"1" validate:"min=1,max=10"`
}

// SegmentationConfig holds the duration policy and phrase sources used by the engine
type SegmentationConfig struct {
	MinSeconds         float64 `envconfig:"MIN_SECONDS" default:"90" validate:"gt=0"`
	TargetSeconds      float64 `envconfig:"TARGET_SECONDS" default:"165" validate:"gt=0"`
	MaxSeconds         float64 `envconfig:"MAX_SECONDS" default:"240" validate:"gt=0"`
	SilenceGapSeconds  float64 `envconfig:"SILENCE_GAP_SECONDS" default:"2" validate:"gt=0"`
	NarratorLeadTokens int     `envconfig:"NARRATOR_LEAD_TOKENS" default:"4" validate:"min=0"`
	PrefixSeconds      float64 `envconfig:"PREFIX_SECONDS" default:"10" validate:"min=0"`
	PhrasesFile        string  `envconfig:"PHRASES_FILE"`
}

// TranscriptionConfig selects and orders transcription backends
type TranscriptionConfig struct {
	Backends         []string      `envconfig:"BACKENDS" default:"assemblyai,openai" validate:"dive,oneof=assemblyai openai"`
	Language         string        `envconfig:"LANGUAGE" default:"es" validate:"required"`
	NarratorLanguage string        `envconfig:"NARRATOR_LANGUAGE" default:"en" validate:"required"`
	RetryMaxElapsed  time.Duration `envconfig:"RETRY_MAX_ELAPSED" default:"30s"`
	CacheTTL         time.Duration `envconfig:"CACHE_TTL" default:"168h"`
}

// OpenAIConfig holds Whisper-compatible transcription settings
type OpenAIConfig struct {
	APIKey        string `envconfig:"API_KEY"`
	BaseURL       string `envconfig:"BASE_URL"`
	Model         string `envconfig:"MODEL" default:"gpt-4o-transcribe-diarize"`
	FallbackModel string `envconfig:"FALLBACK_MODEL" default:"whisper-1"`
}

// AssemblyAIConfig holds AssemblyAI settings
type AssemblyAIConfig struct {
	APIKey  string `envconfig:"API_KEY"`
	BaseURL string `envconfig:"BASE_URL"`
}

// GroqConfig holds proofreading settings
type GroqConfig struct {
	Enabled bool   `envconfig:"ENABLED" default:"false"`
	APIKey  string `envconfig:"API_KEY"`
	APIURL  string `envconfig:"API_URL" default:"https://api.groq.com"`
	Model   string `envconfig:"MODEL" default:"llama-3.1-8b-instant"`
}

// DiarizationConfig points at an optional acoustic diarization service
type DiarizationConfig struct {
	URL     string        `envconfig:"URL"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10m"`
}

// MediaConfig locates the ffmpeg tools
type MediaConfig struct {
	FFmpegPath  string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	FFprobePath string `envconfig:"FFPROBE_PATH" default:"ffprobe"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `envconfig:"ENABLED" default:"false"`
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// StorageConfig holds transcript storage configuration
type StorageConfig struct {
	Type            string `envconfig:"TYPE" default:"local" validate:"oneof=local minio s3"`
	LocalDir        string `envconfig:"LOCAL_DIR" default:"transcripts"`
	Endpoint        string `envconfig:"ENDPOINT" default:"localhost:9000"`
	Region          string `envconfig:"REGION" default:"us-east-1"`
	AccessKeyID     string `envconfig:"ACCESS_KEY"`
	SecretAccessKey string `envconfig:"SECRET_KEY"`
	BucketName      string `envconfig:"BUCKET" default:"radio-transcripts"`
	Prefix          string `envconfig:"PREFIX"`
	UseSSL          bool   `envconfig:"USE_SSL" default:"false"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled     bool   `envconfig:"ENABLED" default:"false"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	Host        string `envconfig:"HOST" default:"localhost"`
	Port        string `envconfig:"PORT" default:"5432"`
	User        string `envconfig:"USER" default:"postgres"`
	Password    string `envconfig:"PASSWORD" default:"postgres"`
	Name        string `envconfig:"NAME" default:"radio_transcriber"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"MAX_CONNS" default:"10"`
	MinConns    int    `envconfig:"MIN_CONNS" default:"2"`
}

// Load loads configuration from the environment, an optional .env file and an
// optional phrasebook YAML file.
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	return FromEnv()
}

// FromEnv builds and validates the configuration from the current environment
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	book := DefaultPhrasebook()
	if path := cfg.Segmentation.PhrasesFile; path != "" {
		loaded, err := LoadPhrasebook(path)
		if err != nil {
			return nil, err
		}
		book = loaded
	}
	cfg.Phrases = book

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	s := c.Segmentation
	if !(s.MinSeconds <= s.TargetSeconds && s.TargetSeconds <= s.MaxSeconds) {
		return fmt.Errorf("SEGMENT_MIN_SECONDS <= SEGMENT_TARGET_SECONDS <= SEGMENT_MAX_SECONDS must hold (got %.0f / %.0f / %.0f)",
			s.MinSeconds, s.TargetSeconds, s.MaxSeconds)
	}

	switch c.Storage.Type {
	case "minio", "s3":
		if c.Storage.BucketName == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for storage type %s", c.Storage.Type)
		}
		if c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" {
			return fmt.Errorf("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required for storage type %s", c.Storage.Type)
		}
	}
	return nil
}

// HasBackend reports whether the named transcription backend is configured
func (c *Config) HasBackend(name string) bool {
	for _, b := range c.Transcription.Backends {
		if strings.EqualFold(strings.TrimSpace(b), name) {
			return true
		}
	}
	return false
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
