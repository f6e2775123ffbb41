// Package config loads server configuration from a YAML file, the same
// format and decode path dmitrymodder/minewire's main.go uses.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CompressionKind names which scheme Anvil storage should use when writing
// chunk payloads.
type CompressionKind string

const (
	CompressionGZip CompressionKind = "gzip"
	CompressionZlib CompressionKind = "zlib"
	CompressionNone CompressionKind = "none"
	CompressionLZ4  CompressionKind = "lz4"
)

// Config is the server's full set of tunables.
type Config struct {
	ListenAddress string `yaml:"listen_address"`
	MaxPlayers    int    `yaml:"max_players"`
	ViewDistance  int    `yaml:"view_distance"`
	Motd          string `yaml:"motd"`

	CompressionThreshold int             `yaml:"compression_threshold"`
	StorageCompression   CompressionKind `yaml:"storage_compression"`
	StorageCompressionLv int             `yaml:"storage_compression_level"`
	ChunkWriteInPlace    bool            `yaml:"chunk_write_in_place"`

	WorldDir string `yaml:"world_dir"`
}

// Default returns a Config with reasonable out-of-the-box values, matching
// the teacher's pattern of defaulting unset fields after a YAML decode
// (ProtocolID=773, MaxPlayers=20, etc. in dmitrymodder/minewire's main.go).
func Default() Config {
	return Config{
		ListenAddress:        ":25565",
		MaxPlayers:           20,
		ViewDistance:         10,
		Motd:                 "A kiln server",
		CompressionThreshold: 256,
		StorageCompression:   CompressionZlib,
		StorageCompressionLv: 6,
		ChunkWriteInPlace:    true,
		WorldDir:             "world",
	}
}

// Load reads and decodes a YAML config file at path on top of Default, so
// fields the file does not set keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}
