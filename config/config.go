package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"clipforge/internal/appdirs"
	"clipforge/log"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type AppConfig struct {
	TempDir     string `toml:"temp_dir"`
	FfmpegPath  string `toml:"ffmpeg_path"`
	FfprobePath string `toml:"ffprobe_path"`
	Proxy       string `toml:"proxy"`

	ParsedProxy *url.URL `toml:"-"`
}

type OpenaiCompatibleConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// ClipConfig carries the defaults for highlight selection and clip rendering.
type ClipConfig struct {
	MaxHighlights      int     `toml:"max_highlights"`
	MinClipDuration    float64 `toml:"min_clip_duration"`
	MaxClipDuration    float64 `toml:"max_clip_duration"`
	MaxWordsPerSegment int     `toml:"max_words_per_segment"`
	TargetWidth        int     `toml:"target_width"`
	TargetHeight       int     `toml:"target_height"`
	RenderConcurrency  int     `toml:"render_concurrency"`
}

type CaptionStyleConfig struct {
	FontSize       int    `toml:"font_size"`
	TextColor      string `toml:"text_color"`
	HighlightColor string `toml:"highlight_color"`
}

type OssConfig struct {
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	AccessKeyId     string `toml:"access_key_id"`
	AccessKeySecret string `toml:"access_key_secret"`
	Bucket          string `toml:"bucket"`
}

type QueueConfig struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	Server     ServerConfig           `toml:"server"`
	App        AppConfig              `toml:"app"`
	Llm        OpenaiCompatibleConfig `toml:"llm"`
	Transcribe OpenaiCompatibleConfig `toml:"transcribe"`
	Clip       ClipConfig             `toml:"clip"`
	Caption    CaptionStyleConfig     `toml:"caption"`
	Oss        OssConfig              `toml:"oss"`
	Queue      QueueConfig            `toml:"queue"`
}

var Conf Config

var resolveConfigPath = func() (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		App: AppConfig{
			TempDir:     filepath.Join(os.TempDir(), "clipforge"),
			FfmpegPath:  "ffmpeg",
			FfprobePath: "ffprobe",
		},
		Llm: OpenaiCompatibleConfig{
			BaseUrl: "https://api.openai.com/v1",
			Model:   "gpt-4o",
		},
		Transcribe: OpenaiCompatibleConfig{
			BaseUrl: "https://api.openai.com/v1",
			Model:   "whisper-1",
		},
		Clip: ClipConfig{
			MaxHighlights:      5,
			MinClipDuration:    15,
			MaxClipDuration:    60,
			MaxWordsPerSegment: 3,
			TargetWidth:        1080,
			TargetHeight:       1920,
			RenderConcurrency:  1,
		},
		Caption: CaptionStyleConfig{
			FontSize:       72,
			TextColor:      "#FFFFFF",
			HighlightColor: "#FFD700",
		},
		Queue: QueueConfig{
			RedisAddr:   "localhost:6379",
			Concurrency: 3,
		},
	}
}

// LoadOrCreateConfig loads the config file, writing the default one first when
// it does not exist yet. Returns whether a new file was created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, fmt.Errorf("resolve config path: %w", err)
	}

	created := false
	if _, err = os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, fmt.Errorf("write default config: %w", err)
		}
		created = true
	}

	Conf = defaultConfig()
	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return created, fmt.Errorf("decode config %s: %w", configPath, err)
	}

	if Conf.App.Proxy != "" {
		parsed, err := url.Parse(Conf.App.Proxy)
		if err != nil {
			return created, fmt.Errorf("invalid proxy address %q: %w", Conf.App.Proxy, err)
		}
		Conf.App.ParsedProxy = parsed
	}

	return created, nil
}

// LoadConfig is the startup entry; logs and reports success as a bool.
func LoadConfig() bool {
	created, err := LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("failed to load config", zap.Error(err))
		return false
	}
	if created {
		configPath, _ := resolveConfigPath()
		log.GetLogger().Info("created default config file, please fill in API keys", zap.String("path", configPath))
	}
	return true
}

func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// CheckConfig validates the parts the pipeline cannot run without.
func CheckConfig() error {
	if Conf.Llm.ApiKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if Conf.Transcribe.ApiKey == "" {
		return fmt.Errorf("transcribe.api_key is required")
	}
	if Conf.Clip.MinClipDuration <= 0 || Conf.Clip.MaxClipDuration <= Conf.Clip.MinClipDuration {
		return fmt.Errorf("clip duration bounds are invalid: min=%.1f max=%.1f",
			Conf.Clip.MinClipDuration, Conf.Clip.MaxClipDuration)
	}
	if Conf.Clip.MaxWordsPerSegment < 2 || Conf.Clip.MaxWordsPerSegment > 4 {
		return fmt.Errorf("clip.max_words_per_segment must be between 2 and 4, got %d", Conf.Clip.MaxWordsPerSegment)
	}
	return nil
}
