package startup

import (
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.StorageEndpoint != "127.0.0.1:9000" {
		t.Errorf("Expected default endpoint, got %s", cfg.StorageEndpoint)
	}
	if cfg.Port != "3000" {
		t.Errorf("Expected default port 3000, got %s", cfg.Port)
	}
	if !cfg.StreamWhileEncoding {
		t.Error("Expected streaming enabled by default")
	}
	if !cfg.CacheFragments {
		t.Error("Expected fragment caching enabled by default")
	}
	if cfg.EncodeAhead {
		t.Error("Expected encode-ahead disabled by default")
	}
	if cfg.UseStorageProxy {
		t.Error("Expected direct object store by default")
	}
	if cfg.Namespace != "default" {
		t.Errorf("Expected default namespace, got %s", cfg.Namespace)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_ENDPOINT", "minio.media:9000")
	t.Setenv("USE_STORAGE_PROXY", "true")
	t.Setenv("NODE_ADDRESS", "10.0.0.2")
	t.Setenv("STORAGE_PORT", "9090")
	t.Setenv("STREAM_WHILE_ENCODING", "false")
	t.Setenv("USE_GPU", "true")
	t.Setenv("REGISTRY_NAME", "ghcr.io/acme/")
	t.Setenv("PORT", "8088")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.StorageEndpoint != "minio.media:9000" {
		t.Errorf("Expected configured endpoint, got %s", cfg.StorageEndpoint)
	}
	if !cfg.UseStorageProxy {
		t.Error("Expected storage proxy enabled")
	}
	if cfg.NodeAddress != "10.0.0.2" {
		t.Errorf("Expected node address 10.0.0.2, got %s", cfg.NodeAddress)
	}
	if cfg.StoragePort != 9090 {
		t.Errorf("Expected storage port 9090, got %d", cfg.StoragePort)
	}
	if cfg.StreamWhileEncoding {
		t.Error("Expected streaming disabled")
	}
	if !cfg.UseGPU {
		t.Error("Expected GPU enabled")
	}
	if cfg.RegistryName != "ghcr.io/acme/" {
		t.Errorf("Expected configured registry, got %s", cfg.RegistryName)
	}
	if cfg.Port != "8088" {
		t.Errorf("Expected port 8088, got %s", cfg.Port)
	}
}

func TestGetEnvBoolInvalid(t *testing.T) {
	t.Setenv("SOME_FLAG", "not-a-bool")
	if got := getEnvBool("SOME_FLAG", true); !got {
		t.Error("Expected fallback true for invalid boolean")
	}
	if got := getEnvBool("SOME_FLAG", false); got {
		t.Error("Expected fallback false for invalid boolean")
	}
}

func TestGetEnvIntInvalid(t *testing.T) {
	t.Setenv("SOME_PORT", "ninety")
	if got := getEnvInt("SOME_PORT", 8080); got != 8080 {
		t.Errorf("Expected fallback 8080, got %d", got)
	}
}

func TestBuildString(t *testing.T) {
	s := BuildString()
	if s == "" {
		t.Error("Expected non-empty build string")
	}
}
