package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

// Config is loaded once from the environment and passed explicitly to every
// component constructor. It is not mutated after Load returns.
type Config struct {
	// Server
	Port string
	Env  string

	// Database / queue (api, worker and scheduler only; the CLI runs without them)
	DatabaseURL string
	RedisURL    string

	// Session tokens
	JWTSecret string

	// External APIs
	OpenAIAPIKey      string
	UnsplashAccessKey string
	PexelsAPIKey      string

	// VOICEVOX
	VoicevoxURL string
	SpeakerID   int

	// YouTube upload
	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeTokenFile    string

	// Directories
	OutputDir string
	TempDir   string

	// Video
	VideoDuration float64 // target duration cap in seconds
	VideoWidth    int
	VideoHeight   int
	VideoFPS      int

	// Assets
	MaxImages int
	MinImages int
	MaxVideos int
	MinVideos int
}

// Load reads the environment (plus a .env file if present) into a Config.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Env:         getEnvOrDefault("ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnvOrDefault("REDIS_URL", "localhost:6379"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		UnsplashAccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
		PexelsAPIKey:      os.Getenv("PEXELS_API_KEY"),

		VoicevoxURL: getEnvOrDefault("VOICEVOX_SERVER_URL", "http://127.0.0.1:50021"),
		SpeakerID:   getEnvAsIntOrDefault("VOICEVOX_SPEAKER_ID", 3),

		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeTokenFile:    getEnvOrDefault("YOUTUBE_TOKEN_FILE", "./credentials/youtube_token.json"),

		OutputDir: getEnvOrDefault("OUTPUT_DIR", "./output"),
		TempDir:   getEnvOrDefault("TEMP_DIR", "./temp"),

		VideoDuration: getEnvAsFloatOrDefault("VIDEO_DURATION", 30),
		VideoWidth:    getEnvAsIntOrDefault("VIDEO_WIDTH", 1920),
		VideoHeight:   getEnvAsIntOrDefault("VIDEO_HEIGHT", 1080),
		VideoFPS:      getEnvAsIntOrDefault("VIDEO_FPS", 24),

		MaxImages: getEnvAsIntOrDefault("MAX_IMAGES", 5),
		MinImages: getEnvAsIntOrDefault("MIN_IMAGES", 3),
		MaxVideos: getEnvAsIntOrDefault("MAX_VIDEOS", 5),
		MinVideos: getEnvAsIntOrDefault("MIN_VIDEOS", 1),
	}
}

// Validate performs the pre-flight checks that must pass before any pipeline
// stage runs. Network reachability of the synthesis engine is checked
// separately by the pipeline, which owns the VOICEVOX client.
func (c *Config) Validate() error {
	var errs []string

	if c.OpenAIAPIKey == "" {
		errs = append(errs, "OPENAI_API_KEY is not set")
	}
	if c.UnsplashAccessKey == "" {
		errs = append(errs, "UNSPLASH_ACCESS_KEY is not set")
	}
	if c.PexelsAPIKey == "" {
		errs = append(errs, "PEXELS_API_KEY is not set")
	}

	for _, dir := range []string{c.OutputDir, c.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			errs = append(errs, fmt.Sprintf("cannot create directory %s: %v", dir, err))
			continue
		}
		if !isWritable(dir) {
			errs = append(errs, fmt.Sprintf("directory is not writable: %s", dir))
		}
	}

	if c.VideoDuration <= 0 || c.VideoDuration > 300 {
		errs = append(errs, "video duration must be between 1 and 300 seconds")
	}
	if c.VideoWidth <= 0 || c.VideoHeight <= 0 {
		errs = append(errs, "video dimensions must be positive")
	}
	if c.VideoFPS <= 0 || c.VideoFPS > 60 {
		errs = append(errs, "video FPS must be between 1 and 60")
	}

	if c.MaxImages <= 0 || c.MaxImages > 20 {
		errs = append(errs, "max images must be between 1 and 20")
	}
	if c.MinImages <= 0 || c.MinImages > c.MaxImages {
		errs = append(errs, "min images must be positive and not greater than max images")
	}
	if c.MaxVideos <= 0 || c.MaxVideos > 10 {
		errs = append(errs, "max videos must be between 1 and 10")
	}
	if c.MinVideos <= 0 || c.MinVideos > c.MaxVideos {
		errs = append(errs, "min videos must be positive and not greater than max videos")
	}

	if c.SpeakerID < 0 {
		errs = append(errs, "speaker ID must be non-negative")
	}

	if len(errs) > 0 {
		msg := "configuration errors:"
		for _, e := range errs {
			msg += "\n  - " + e
		}
		return apperr.Errorf(apperr.KindConfig, "config.Validate", "%s", msg)
	}
	return nil
}

func isWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".writecheck")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
