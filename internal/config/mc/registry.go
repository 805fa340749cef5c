package mc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/protolab/gigemc/internal/config"
)

const fileName = "mc.yaml"

// StationProfile carries the MELSEC "station" addressing numbers
// (network/PC/IO/station, per CaptainPineapple-go-mcprotocol's
// station type) and the default ladder program to load on startup.
type StationProfile struct {
	NetworkNo   byte   `yaml:"network_no"`
	PCNo        byte   `yaml:"pc_no"`
	UnitIONo    uint16 `yaml:"unit_io_no"`
	StationNo   byte   `yaml:"station_no"`
	ProgramPath string `yaml:"program_path,omitempty"`
}

// Registry is the persisted set of station profiles, keyed by a
// user-chosen name.
type Registry struct {
	Version  int                        `yaml:"version"`
	Stations map[string]*StationProfile `yaml:"stations,omitempty"`
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		Version:  1,
		Stations: make(map[string]*StationProfile),
	}
}

// EnsureStation returns the profile for name, creating one with local
// station defaults (network 0x00, PC 0xFF — "self station" per
// CaptainPineapple's NewLocalStation) if it doesn't already exist.
func (r *Registry) EnsureStation(name string) *StationProfile {
	if r.Stations == nil {
		r.Stations = make(map[string]*StationProfile)
	}
	if p, ok := r.Stations[name]; ok {
		return p
	}
	p := &StationProfile{
		NetworkNo: 0x00,
		PCNo:      0xFF,
		UnitIONo:  0xFF03,
		StationNo: 0x00,
	}
	r.Stations[name] = p
	return p
}

// Load reads the registry from disk, returning a fresh default
// registry if no file exists yet.
func Load() (*Registry, error) {
	path, err := config.Path(fileName)
	if err != nil {
		return nil, fmt.Errorf("mc config: %w", err)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("mc config: read: %w", err)
	}
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("mc config: parse: %w", err)
	}
	if reg.Stations == nil {
		reg.Stations = make(map[string]*StationProfile)
	}
	return &reg, nil
}

// Save writes the registry to disk atomically.
func (r *Registry) Save() error {
	path, err := config.Path(fileName)
	if err != nil {
		return fmt.Errorf("mc config: %w", err)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("mc config: marshal: %w", err)
	}
	return config.WriteAtomic(path, data, 0600)
}
