// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Heap configuration: typed settings loaded from YAML, plus a thread-safe
// store holding the live snapshot with hot-reload propagation. The grain is
// fixed for the life of the process; reloads may only touch the rest.

package control

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/momentics/numaheap/api"
)

// HomingMode selects how thread-to-node homing support is decided.
type HomingMode string

const (
	HomingAuto HomingMode = "auto" // ask the platform topology
	HomingOn   HomingMode = "on"
	HomingOff  HomingMode = "off"
)

// ByteSize is a byte count that unmarshals from "2MiB", "64KiB", "1GiB" or a
// plain integer.
type ByteSize uint64

// ParseByteSize parses a human byte size with binary suffixes.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	mult := uint64(1)
	for _, suf := range []struct {
		name string
		mult uint64
	}{{"GiB", 1 << 30}, {"MiB", 1 << 20}, {"KiB", 1 << 10}, {"B", 1}} {
		if strings.HasSuffix(s, suf.name) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suf.name))
			mult = suf.mult
			break
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(api.ErrInvalidArgument, "byte size %q", s)
	}
	if n > math.MaxUint64/mult {
		return 0, errors.Wrapf(api.ErrInvalidArgument, "byte size %q overflows", s)
	}
	return ByteSize(n * mult), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseByteSize(n.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", n.Line)
	}
	*b = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b ByteSize) MarshalYAML() (any, error) { return b.String(), nil }

func (b ByteSize) String() string {
	switch {
	case b != 0 && b%(1<<30) == 0:
		return fmt.Sprintf("%dGiB", b>>30)
	case b != 0 && b%(1<<20) == 0:
		return fmt.Sprintf("%dMiB", b>>20)
	case b != 0 && b%(1<<10) == 0:
		return fmt.Sprintf("%dKiB", b>>10)
	default:
		return strconv.FormatUint(uint64(b), 10)
	}
}

// Config holds the heap parameters.
type Config struct {
	Grain   ByteSize   `yaml:"grain"`
	Regions int        `yaml:"regions"`
	NUMA    NUMAConfig `yaml:"numa"`
	Log     LogConfig  `yaml:"log"`
	Metrics struct {
		Namespace string `yaml:"namespace"`
	} `yaml:"metrics"`
}

// NUMAConfig controls region biasing.
type NUMAConfig struct {
	Enabled bool       `yaml:"enabled"`
	Homing  HomingMode `yaml:"homing"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	cfg := &Config{
		Grain:   ByteSize(api.DefaultGrain),
		Regions: 64,
		NUMA:    NUMAConfig{Enabled: true, Homing: HomingAuto},
		Log:     LogConfig{Enabled: true, Level: "info", Format: "text"},
	}
	cfg.Metrics.Namespace = "numaheap"
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := api.ValidateGrain(api.Grain(c.Grain)); err != nil {
		return err
	}
	if c.Regions <= 0 {
		return errors.Wrapf(api.ErrInvalidArgument, "regions must be positive, got %d", c.Regions)
	}
	switch c.NUMA.Homing {
	case HomingAuto, HomingOn, HomingOff:
	default:
		return errors.Wrapf(api.ErrInvalidArgument, "unknown homing mode %q", c.NUMA.Homing)
	}
	return nil
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Config keys exposed through the snapshot map.
const (
	KeyGrain     = "grain"
	KeyRegions   = "regions"
	KeyNUMA      = "numa.enabled"
	KeyHoming    = "numa.homing"
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

// ConfigStore holds the live configuration with snapshot and listener support.
type ConfigStore struct {
	mu        sync.RWMutex
	config    Config
	listeners []func()
}

// NewConfigStore initializes a store from cfg; nil selects DefaultConfig.
func NewConfigStore(cfg *Config) *ConfigStore {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ConfigStore{
		config:    *cfg,
		listeners: make([]func(), 0),
	}
}

// Current returns a copy of the typed configuration.
func (cs *ConfigStore) Current() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// GetSnapshot returns all config values keyed by name.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return map[string]any{
		KeyGrain:     uint64(cs.config.Grain),
		KeyRegions:   cs.config.Regions,
		KeyNUMA:      cs.config.NUMA.Enabled,
		KeyHoming:    string(cs.config.NUMA.Homing),
		KeyLogLevel:  cs.config.Log.Level,
		KeyLogFormat: cs.config.Log.Format,
	}
}

// SetConfig merges new values and dispatches reload. Only the log settings
// and the homing mode may change at runtime.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	next := cs.config
	for k, v := range newCfg {
		switch k {
		case KeyGrain:
			if toUint64(v) != uint64(cs.config.Grain) {
				return api.ErrGrainImmutable
			}
		case KeyLogLevel:
			next.Log.Level = fmt.Sprint(v)
		case KeyLogFormat:
			next.Log.Format = fmt.Sprint(v)
		case KeyHoming:
			next.NUMA.Homing = HomingMode(fmt.Sprint(v))
		default:
			return errors.Wrapf(api.ErrNotSupported, "config key %q is not reloadable", k)
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	cs.config = next
	cs.dispatchReload()
	return nil
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// dispatchReload invokes all listeners.
func (cs *ConfigStore) dispatchReload() {
	for _, fn := range cs.listeners {
		go fn()
	}
}

func toUint64(v any) uint64 {
	switch n := v.(type) {
	case int:
		return uint64(n)
	case int64:
		return uint64(n)
	case uint64:
		return n
	case uintptr:
		return uint64(n)
	case ByteSize:
		return uint64(n)
	case api.Grain:
		return uint64(n)
	case string:
		b, _ := ParseByteSize(n)
		return uint64(b)
	default:
		return 0
	}
}
