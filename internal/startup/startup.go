package startup

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"vod-egress/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// Config holds all egress server configuration.
type Config struct {
	// Storage backend
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageUseSSL    bool

	// Storage proxy path (used instead of the direct object store when set)
	UseStorageProxy bool
	NodeAddress     string
	StoragePort     int

	// Delivery policy
	PodAddress          string
	StreamWhileEncoding bool
	UseGPU              bool
	EncodeAhead         bool
	CacheFragments      bool

	// Job submission
	RegistryName string
	ImageName    string
	GPUImageName string
	Namespace    string

	// HTTP server
	Port           string
	WWWRoot        string
	MetricsEnabled bool
}

// LoadConfig loads configuration from the environment. A .env file in the
// working directory is honored when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Debug("no .env file loaded: %v", err)
	}

	cfg := &Config{
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "127.0.0.1:9000"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),
		StorageUseSSL:    getEnvBool("STORAGE_USE_SSL", false),

		UseStorageProxy: getEnvBool("USE_STORAGE_PROXY", false),
		NodeAddress:     getEnv("NODE_ADDRESS", "127.0.0.1"),
		StoragePort:     getEnvInt("STORAGE_PORT", 8080),

		PodAddress:          getEnv("POD_ADDRESS", "127.0.0.1"),
		StreamWhileEncoding: getEnvBool("STREAM_WHILE_ENCODING", true),
		UseGPU:              getEnvBool("USE_GPU", false),
		EncodeAhead:         getEnvBool("ENCODE_AHEAD", false),
		CacheFragments:      getEnvBool("CACHE_FRAGMENTS", true),

		RegistryName: getEnv("REGISTRY_NAME", "registry.local/"),
		ImageName:    getEnv("IMAGE_NAME", "encoder"),
		GPUImageName: getEnv("GPU_IMAGE_NAME", "nvidia-encoder"),
		Namespace:    getEnv("JOB_NAMESPACE", "default"),

		Port:           getEnv("PORT", "3000"),
		WWWRoot:        getEnv("WWWROOT_DIR", "./wwwroot"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}

	if cfg.EncodeAhead && cfg.CacheFragments {
		logging.Warn("ENCODE_AHEAD and CACHE_FRAGMENTS are both set; encode-ahead takes precedence for job naming")
	}

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  STORAGE_ENDPOINT:      %s", cfg.StorageEndpoint)
	logging.Info("  USE_STORAGE_PROXY:     %v", cfg.UseStorageProxy)
	logging.Info("  NODE_ADDRESS:          %s", cfg.NodeAddress)
	logging.Info("  STORAGE_PORT:          %d", cfg.StoragePort)
	logging.Info("  POD_ADDRESS:           %s", cfg.PodAddress)
	logging.Info("  STREAM_WHILE_ENCODING: %v", cfg.StreamWhileEncoding)
	logging.Info("  USE_GPU:               %v", cfg.UseGPU)
	logging.Info("  ENCODE_AHEAD:          %v", cfg.EncodeAhead)
	logging.Info("  CACHE_FRAGMENTS:       %v", cfg.CacheFragments)
	logging.Info("  REGISTRY_NAME:         %s", cfg.RegistryName)
	logging.Info("  IMAGE_NAME:            %s", cfg.ImageName)
	logging.Info("  GPU_IMAGE_NAME:        %s", cfg.GPUImageName)
	logging.Info("  JOB_NAMESPACE:         %s", cfg.Namespace)
	logging.Info("  PORT:                  %s", cfg.Port)
	logging.Info("  METRICS_ENABLED:       %v", cfg.MetricsEnabled)
	logging.Info("  LOG_LEVEL:             %s", logging.GetLevel())

	return cfg, nil
}

// LogServerStarted reports the listen address and time to readiness.
func LogServerStarted(port string, startupTime time.Duration) {
	logging.Info("------------------------------------------------------------")
	logging.Info("Server %s (%s) listening on :%s (started in %v)", Version, Commit, port, startupTime.Round(time.Millisecond))
	logging.Info("------------------------------------------------------------")
}

// LogFatal logs a fatal error and exits.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("  Invalid boolean for %s: %q, using %v", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("  Invalid integer for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}

// String renders build info for the version endpoint.
func BuildString() string {
	return fmt.Sprintf("%s (%s, built %s, %s %s/%s)", Version, Commit, BuildTime, GoVersion, runtime.GOOS, runtime.GOARCH)
}
