package gige

import (
	"testing"

	gvcore "github.com/protolab/gigemc/internal/gige"
)

func TestNewRegistryIsEmpty(t *testing.T) {
	reg := New()
	if reg.Version != 1 {
		t.Errorf("Version = %d, want 1", reg.Version)
	}
	if len(reg.Cameras) != 0 {
		t.Errorf("expected empty Cameras map, got %d entries", len(reg.Cameras))
	}
}

func TestEnsureCameraCreatesDefault(t *testing.T) {
	reg := New()
	p := reg.EnsureCamera("SN001")
	if p.Serial != "SN001" {
		t.Errorf("Serial = %q, want SN001", p.Serial)
	}
	if p.Image.PixelFormat != gvcore.Mono8 {
		t.Errorf("default PixelFormat = %v, want Mono8", p.Image.PixelFormat)
	}
	if p.Source.Kind != SourcePattern {
		t.Errorf("default source kind = %v, want pattern", p.Source.Kind)
	}

	same := reg.EnsureCamera("SN001")
	if same != p {
		t.Errorf("EnsureCamera should return the existing profile on a second call")
	}
}

func TestRegistrySaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg := New()
	p := reg.EnsureCamera("SN042")
	p.UserDefinedName = "bench-cam"
	p.Source = ImageSourceConfig{Kind: SourceFolder, Path: "/frames"}

	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, ok := loaded.Cameras["SN042"]
	if !ok {
		t.Fatalf("loaded registry missing SN042")
	}
	if got.UserDefinedName != "bench-cam" {
		t.Errorf("UserDefinedName = %q, want bench-cam", got.UserDefinedName)
	}
	if got.Source.Kind != SourceFolder || got.Source.Path != "/frames" {
		t.Errorf("Source = %+v, want folder:/frames", got.Source)
	}
}

func TestLoadWithNoFileReturnsDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(reg.Cameras) != 0 {
		t.Errorf("expected empty default registry, got %d cameras", len(reg.Cameras))
	}
}
