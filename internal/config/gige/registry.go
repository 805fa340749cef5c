package gige

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/protolab/gigemc/internal/config"
	gvcore "github.com/protolab/gigemc/internal/gige"
)

const fileName = "gige.yaml"

// ImageSourceKind selects which imagesource.Source implementation a
// CameraProfile boots with.
type ImageSourceKind string

const (
	SourcePattern ImageSourceKind = "pattern"
	SourceFolder  ImageSourceKind = "folder"
	SourceFile    ImageSourceKind = "file"
)

// ImageSourceConfig selects and parameterizes a camera's image source.
type ImageSourceConfig struct {
	Kind ImageSourceKind `yaml:"kind"`
	Path string          `yaml:"path,omitempty"` // folder or file, unused by pattern
}

// CameraProfile carries the bootstrap identity strings and default
// image configuration for one emulated camera.
type CameraProfile struct {
	Manufacturer    string             `yaml:"manufacturer"`
	Model           string             `yaml:"model"`
	DeviceVersion   string             `yaml:"device_version"`
	Serial          string             `yaml:"serial"`
	UserDefinedName string             `yaml:"user_defined_name,omitempty"`
	Image           gvcore.ImageConfig `yaml:"image"`
	Source          ImageSourceConfig  `yaml:"source"`
	LastIP          string             `yaml:"last_ip,omitempty"`
}

// Registry is the persisted set of camera profiles, keyed by serial
// number.
type Registry struct {
	Version int                       `yaml:"version"`
	Cameras map[string]*CameraProfile `yaml:"cameras,omitempty"`
}

// New returns an empty registry with no camera profiles.
func New() *Registry {
	return &Registry{
		Version: 1,
		Cameras: make(map[string]*CameraProfile),
	}
}

// EnsureCamera returns the profile for serial, creating a default one
// if it doesn't already exist.
func (r *Registry) EnsureCamera(serial string) *CameraProfile {
	if r.Cameras == nil {
		r.Cameras = make(map[string]*CameraProfile)
	}
	if p, ok := r.Cameras[serial]; ok {
		return p
	}
	p := &CameraProfile{
		Manufacturer: "ProtoLab",
		Model:        "GigE-Vision Emulator",
		Serial:       serial,
		Image: gvcore.ImageConfig{
			Width:       640,
			Height:      480,
			PixelFormat: gvcore.Mono8,
			FrameRate:   30,
			PacketSize:  1500,
		},
		Source: ImageSourceConfig{Kind: SourcePattern},
	}
	r.Cameras[serial] = p
	return p
}

// Load reads the registry from disk, returning a fresh default
// registry if no file exists yet.
func Load() (*Registry, error) {
	path, err := config.Path(fileName)
	if err != nil {
		return nil, fmt.Errorf("gige config: %w", err)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("gige config: read: %w", err)
	}
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("gige config: parse: %w", err)
	}
	if reg.Cameras == nil {
		reg.Cameras = make(map[string]*CameraProfile)
	}
	return &reg, nil
}

// Save writes the registry to disk atomically.
func (r *Registry) Save() error {
	path, err := config.Path(fileName)
	if err != nil {
		return fmt.Errorf("gige config: %w", err)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("gige config: marshal: %w", err)
	}
	return config.WriteAtomic(path, data, 0600)
}
