package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("got port %d, want 8080", cfg.Port)
	}
	if cfg.MetricsPort != 9100 {
		t.Errorf("got metrics port %d, want 9100", cfg.MetricsPort)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("got max upload %d, want %d", cfg.MaxUploadBytes, 10<<20)
	}
	if cfg.ImageField != "image" {
		t.Errorf("got image field %q, want image", cfg.ImageField)
	}
	if cfg.UseMock {
		t.Error("use_mock should default to false")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: 9000\nmax_upload_bytes: 1048576\nuse_mock: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("got port %d, want 9000", cfg.Port)
	}
	if cfg.MaxUploadBytes != 1<<20 {
		t.Errorf("got max upload %d, want %d", cfg.MaxUploadBytes, 1<<20)
	}
	if !cfg.UseMock {
		t.Error("use_mock not read from file")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for explicitly named missing config file")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Port:           8080,
		MetricsPort:    9100,
		Model:          "model.onnx",
		Metadata:       "metadata.json",
		MaxUploadBytes: 1024,
		ImageField:     "image",
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	samePorts := base
	samePorts.MetricsPort = samePorts.Port
	if err := samePorts.Validate(); err == nil {
		t.Error("expected error when port and metrics_port collide")
	}

	badPort := base
	badPort.Port = -1
	if err := badPort.Validate(); err == nil {
		t.Error("expected error for negative port")
	}

	noModel := base
	noModel.Model = ""
	noModel.ModelFallback = ""
	if err := noModel.Validate(); err == nil {
		t.Error("expected error when no model artifact is configured")
	}

	noModelButMock := noModel
	noModelButMock.UseMock = true
	if err := noModelButMock.Validate(); err != nil {
		t.Errorf("mock engine should not require model paths: %v", err)
	}

	zeroLimit := base
	zeroLimit.MaxUploadBytes = 0
	if err := zeroLimit.Validate(); err == nil {
		t.Error("expected error for zero upload limit")
	}
}
