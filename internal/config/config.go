package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env        Env
	Log        LogConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	Minio      MinioConfig
	Supabase   SupabaseConfig
	Auth       AuthConfig
	TokenStore TokenStoreConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Pipeline   PipelineConfig
	Cleanup    CleanupConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// StorageConfig selects the object storage backend and its buckets
type StorageConfig struct {
	Backend         string        `envconfig:"STORAGE_BACKEND" default:"minio"`
	VideoBucket     string        `envconfig:"STORAGE_VIDEO_BUCKET" default:"videos"`
	ThumbnailBucket string        `envconfig:"STORAGE_THUMBNAIL_BUCKET" default:"thumbnails"`
	SignedURLTTL    time.Duration `envconfig:"STORAGE_SIGNED_URL_TTL" default:"24h"`
}

type MinioConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`

	// PublicBaseURL is the base used for public urls, defaults to the endpoint
	PublicBaseURL string `envconfig:"MINIO_PUBLIC_BASE_URL"`
}

type SupabaseConfig struct {
	URL     string        `envconfig:"SUPABASE_URL"`
	AnonKey string        `envconfig:"SUPABASE_ANON_KEY"`
	Timeout time.Duration `envconfig:"SUPABASE_TIMEOUT" default:"30m"`
}

// AuthConfig configures the token endpoint. URL defaults to SUPABASE_URL + /auth/v1
type AuthConfig struct {
	URL           string        `envconfig:"AUTH_URL"`
	APIKey        string        `envconfig:"AUTH_API_KEY"`
	RefreshWindow time.Duration `envconfig:"AUTH_REFRESH_WINDOW" default:"60s"`
	Timeout       time.Duration `envconfig:"AUTH_TIMEOUT" default:"15s"`
}

type TokenStoreConfig struct {
	Backend  string `envconfig:"TOKEN_STORE_BACKEND" default:"file"`
	FilePath string `envconfig:"TOKEN_STORE_FILE" default:".media-pipeline/credential.json"`
	RedisKey string `envconfig:"TOKEN_STORE_REDIS_KEY" default:"media-pipeline:credential"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	Address      string        `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

type NATSConfig struct {
	Enabled      bool          `envconfig:"NATS_ENABLED" default:"false"`
	URL          string        `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	StreamName   string        `envconfig:"NATS_STREAM_NAME" default:"MEDIA"`
	ConsumerName string        `envconfig:"NATS_CONSUMER_NAME" default:"media-pipeline-worker"`
	Subject      string        `envconfig:"NATS_SUBJECT" default:"media.upload.requested"`
	AckWait      time.Duration `envconfig:"NATS_ACK_WAIT" default:"30s"`
	MaxDeliver   int           `envconfig:"NATS_MAX_DELIVER" default:"5"`

	// EventSubjectPrefix is prepended to the event type when publishing
	EventSubjectPrefix string `envconfig:"NATS_EVENT_SUBJECT_PREFIX" default:"media.events"`
}

// PipelineConfig tunes the upload orchestrator
type PipelineConfig struct {
	SettleDelay        time.Duration `envconfig:"PIPELINE_SETTLE_DELAY" default:"1500ms"`
	BackoffInitial     time.Duration `envconfig:"PIPELINE_BACKOFF_INITIAL" default:"500ms"`
	BackoffMax         time.Duration `envconfig:"PIPELINE_BACKOFF_MAX" default:"5s"`
	ProbeAttempts      int           `envconfig:"PIPELINE_PROBE_ATTEMPTS" default:"6"`
	ResolveAttempts    int           `envconfig:"PIPELINE_RESOLVE_ATTEMPTS" default:"8"`
	CommitAttempts     int           `envconfig:"PIPELINE_COMMIT_ATTEMPTS" default:"3"`
	WorkDir            string        `envconfig:"PIPELINE_WORK_DIR" default:"/tmp/media-pipeline"`
	FFmpegPath         string        `envconfig:"PIPELINE_FFMPEG_PATH" default:"ffmpeg"`
	TranscodeTimeout   time.Duration `envconfig:"PIPELINE_TRANSCODE_TIMEOUT" default:"10m"`
	ThumbnailOffset    time.Duration `envconfig:"PIPELINE_THUMBNAIL_OFFSET" default:"600ms"`
	ThumbnailMaxWidth  int           `envconfig:"PIPELINE_THUMBNAIL_MAX_WIDTH" default:"720"`
	ThumbnailMaxHeight int           `envconfig:"PIPELINE_THUMBNAIL_MAX_HEIGHT" default:"1280"`
	ThumbnailQuality   int           `envconfig:"PIPELINE_THUMBNAIL_QUALITY" default:"80"`
	ThumbnailTimeout   time.Duration `envconfig:"PIPELINE_THUMBNAIL_TIMEOUT" default:"10s"`
}

type CleanupConfig struct {
	Every          time.Duration `envconfig:"CLEANUP_EVERY" default:"15m"`
	JobRetention   time.Duration `envconfig:"CLEANUP_JOB_RETENTION" default:"1h"`
	WorkFileMaxAge time.Duration `envconfig:"CLEANUP_WORK_FILE_MAX_AGE" default:"24h"`
}

// Load reads an optional .env file then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DSN returns the lib/pq keyword connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// URL returns the connection string in url form, as expected by migrate
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// AuthURL returns the token endpoint base
func (c *Config) AuthURL() string {
	if c.Auth.URL != "" {
		return c.Auth.URL
	}
	return c.Supabase.URL + "/auth/v1"
}

// AuthAPIKey returns the api key sent to the token endpoint
func (c *Config) AuthAPIKey() string {
	if c.Auth.APIKey != "" {
		return c.Auth.APIKey
	}
	return c.Supabase.AnonKey
}
