package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	relay_go "senda/relay"
	filecache "senda/relay/pkg/cache/file"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	BasePath = "./config.yaml"
)

var (
	ErrConfigNoExist = errors.New("config does not exist")
)

type SessionConfig struct {
	TTL        time.Duration `validate:"gt=0"`
	SweepEvery time.Duration `validate:"gt=0"`
	CodeDigits int           `validate:"min=3,max=9"`
}

type UploadConfig struct {
	Dir             string   `validate:"required"`
	MaxFiles        int      `validate:"gt=0"`
	MaxSessionFiles int      `validate:"gtefield=MaxFiles"`
	MaxFileSize     int64    `validate:"gt=0"` // bytes
	MaxBatchSize    int64    `validate:"gtefield=MaxFileSize"`
	MaxMemory       int64    `validate:"gt=0"` // bytes kept in memory while parsing multipart
	SniffContent    bool
	IOWorkers       int      `validate:"gt=0"`
	AllowedTypes    []string `validate:"min=1"`
}

type WsConfig struct {
	SendBuffer int           `validate:"gt=0"`
	PingEvery  time.Duration `validate:"gt=0"`
}

type HttpConfig struct {
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`
	IdleTimeout  time.Duration `validate:"gt=0"`
}

type AppConfig struct {
	AppPort    string `validate:"required"`
	AppHost    string `validate:"required"`
	PublicURL  string `validate:"required,url"`
	SenderPath string `validate:"required"`
	StaticDir  string
	Debug      bool

	Session         *SessionConfig `validate:"required"`
	Upload          *UploadConfig  `validate:"required"`
	Ws              *WsConfig      `validate:"required"`
	Http            *HttpConfig    `validate:"required"`
	FileCacheConfig *filecache.Config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("session.ttl", "10m")
	v.SetDefault("session.sweep_every", "1m")
	v.SetDefault("session.code_digits", 4)

	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.max_files", 5)
	v.SetDefault("upload.max_session_files", 5)
	v.SetDefault("upload.max_file_size", 50)
	v.SetDefault("upload.max_batch_size", 50)
	v.SetDefault("upload.max_memory", 32)
	v.SetDefault("upload.sniff_content", true)
	v.SetDefault("upload.io_workers", 16)
	v.SetDefault("upload.allowed_types", []string{
		relay_go.MimePDF,
		relay_go.MimeJPEG,
		relay_go.MimePNG,
		relay_go.MimeDOCX,
	})

	v.SetDefault("app.sender_path", "/enviar-arquivo.html")

	v.SetDefault("ws.send_buffer", 16)
	v.SetDefault("ws.ping_every", "30s")

	// Uploads and downloads of 50MB over slow links
	v.SetDefault("http.read_timeout", "5m")
	v.SetDefault("http.write_timeout", "5m")
	v.SetDefault("http.idle_timeout", "1m")
}

// OpenConfig reads yaml config at path
func OpenConfig(path string) (*viper.Viper, error) {

	// Check if file does exist
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNoExist
		}

		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return v, nil
}

func GetAppConfig(v *viper.Viper, debug bool) (*AppConfig, error) {

	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		return nil, fmt.Errorf("missing APP_PORT env")
	}

	appHost := os.Getenv("APP_HOST")
	if appHost == "" {
		return nil, fmt.Errorf("missing APP_HOST env")
	}

	publicURL := os.Getenv("PUBLIC_URL")
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://%s:%s", appHost, appPort)
	}

	cfg := &AppConfig{
		AppPort:    appPort,
		AppHost:    appHost,
		PublicURL:  strings.TrimSuffix(publicURL, "/"),
		SenderPath: v.GetString("app.sender_path"),
		StaticDir:  v.GetString("app.static_dir"),
		Debug:      debug,
		Session: &SessionConfig{
			TTL:        v.GetDuration("session.ttl"),
			SweepEvery: v.GetDuration("session.sweep_every"),
			CodeDigits: v.GetInt("session.code_digits"),
		},
		Upload: &UploadConfig{
			Dir:             v.GetString("upload.dir"),
			MaxFiles:        v.GetInt("upload.max_files"),
			MaxSessionFiles: v.GetInt("upload.max_session_files"),
			MaxFileSize:     v.GetInt64("upload.max_file_size") * relay_go.Megabyte,
			MaxBatchSize:    v.GetInt64("upload.max_batch_size") * relay_go.Megabyte,
			MaxMemory:       v.GetInt64("upload.max_memory") * relay_go.Megabyte,
			SniffContent:    v.GetBool("upload.sniff_content"),
			IOWorkers:       v.GetInt("upload.io_workers"),
			AllowedTypes:    v.GetStringSlice("upload.allowed_types"),
		},
		Ws: &WsConfig{
			SendBuffer: v.GetInt("ws.send_buffer"),
			PingEvery:  v.GetDuration("ws.ping_every"),
		},
		Http: &HttpConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
	}

	// File cache is optional
	if v.IsSet("cache") {
		cfg.FileCacheConfig = &filecache.Config{
			MaxCacheSize:   v.GetInt64("cache.max_memory"),
			MaxCacheItems:  v.GetInt("cache.max_items"),
			CacheTTL:       v.GetInt("cache.ttl"),
			CacheThreshold: v.GetInt("cache.threshold"),
			FlushEvery:     v.GetInt("cache.flush_every"),
			CheckoutEvery:  v.GetInt("cache.checkout_every"),
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
