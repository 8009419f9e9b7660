package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultModel          = "deepseek/deepseek-chat"
	defaultAddr           = ":8000"
	defaultDataDir        = "data/sessions"
	defaultSTTLanguage    = "th-TH"
	defaultTTSLanguage    = "th"
	defaultCaptureCommand = "arecord -q -f S16_LE -r 16000 -c 1 -t raw -d 6"
	defaultPlayerCommand  = "mpg123 -q"
)

// Config holds the full process configuration for both the web service and
// the desktop talk loop.
type Config struct {
	APIKey    string      `json:"api_key"`
	APIURL    string      `json:"api_url"`
	Model     string      `json:"model"`
	Addr      string      `json:"addr"`
	DataDir   string      `json:"data_dir"`
	StaticDir string      `json:"static_dir"`
	Redis     RedisConfig `json:"redis"`
	Voice     VoiceConfig `json:"voice"`
}

// RedisConfig holds the optional activity-cache connection settings. An empty
// Addr disables the cache entirely.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// VoiceConfig holds speech settings shared by the web and desktop variants.
type VoiceConfig struct {
	STTLanguage    string `json:"stt_language"`
	TTSLanguage    string `json:"tts_language"`
	CaptureCommand string `json:"capture_command"`
	PlayerCommand  string `json:"player_command"`
}

// Load builds the configuration from an optional JSON file (THAIVOICE_CONFIG)
// overridden by environment variables. The completion API key is mandatory:
// the process refuses to start without it.
func Load() (*Config, error) {
	cfg := &Config{
		Model:   defaultModel,
		Addr:    defaultAddr,
		DataDir: defaultDataDir,
		Voice: VoiceConfig{
			STTLanguage:    defaultSTTLanguage,
			TTSLanguage:    defaultTTSLanguage,
			CaptureCommand: defaultCaptureCommand,
			PlayerCommand:  defaultPlayerCommand,
		},
	}

	if path := strings.TrimSpace(os.Getenv("THAIVOICE_CONFIG")); path != "" {
		if err := loadAndUnmarshal(path, cfg); err != nil {
			return nil, err
		}
	}

	envString(&cfg.APIKey, "OPENROUTER_API_KEY")
	envString(&cfg.APIURL, "OPENROUTER_API_URL")
	envString(&cfg.Model, "MODEL_ID")
	envString(&cfg.Addr, "THAIVOICE_ADDR")
	envString(&cfg.DataDir, "THAIVOICE_DATA_DIR")
	envString(&cfg.StaticDir, "THAIVOICE_STATIC_DIR")
	envString(&cfg.Redis.Addr, "REDIS_ADDR")
	envString(&cfg.Redis.Username, "REDIS_USERNAME")
	envString(&cfg.Redis.Password, "REDIS_PASSWORD")
	envInt(&cfg.Redis.DB, "REDIS_DB")
	envString(&cfg.Voice.STTLanguage, "STT_LANGUAGE")
	envString(&cfg.Voice.TTSLanguage, "TTS_LANGUAGE")
	envString(&cfg.Voice.CaptureCommand, "CAPTURE_CMD")
	envString(&cfg.Voice.PlayerCommand, "PLAYER_CMD")

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
	}

	return cfg, nil
}

func envString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
