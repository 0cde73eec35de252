package config

import (
	"os"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("USE_MONGO")
	os.Unsetenv("STORE_KV_DRIVER")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Store.UseMongo {
		t.Fatalf("expected local emulation by default")
	}
	if cfg.Store.Namespace != "bookbuddy" {
		t.Fatalf("unexpected namespace: %q", cfg.Store.Namespace)
	}
	if cfg.Store.KVDriver != "file" {
		t.Fatalf("unexpected kv driver: %q", cfg.Store.KVDriver)
	}
}

func TestLoadConfigMongoRequiresURI(t *testing.T) {
	os.Setenv("USE_MONGO", "true")
	os.Unsetenv("MONGODB_URI")
	defer os.Unsetenv("USE_MONGO")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when USE_MONGO is set without MONGODB_URI")
	}

	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	defer os.Unsetenv("MONGODB_URI")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.Store.UseMongo || cfg.MongoDB.URI == "" {
		t.Fatalf("unexpected config values: %+v", cfg)
	}
}
