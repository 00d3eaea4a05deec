package intern

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/on-the-ground/hashcons/shared/helper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Reclamation selects how an Interner frees entries nobody holds anymore.
type Reclamation int

const (
	// ReclaimNone keeps every entry for the Interner's lifetime.
	ReclaimNone Reclamation = iota
	// ReclaimRefCounted frees an entry as soon as its last holder releases it.
	ReclaimRefCounted
	// ReclaimSweep counts holders but only frees unheld entries on Sweep.
	ReclaimSweep
)

var reclamationNames = map[Reclamation]string{
	ReclaimNone:       "none",
	ReclaimRefCounted: "refcounted",
	ReclaimSweep:      "sweep",
}

func (r Reclamation) String() string {
	if name, ok := reclamationNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reclamation(%d)", int(r))
}

func (r Reclamation) MarshalText() ([]byte, error) {
	if _, ok := reclamationNames[r]; !ok {
		return nil, fmt.Errorf("%w: unknown reclamation %d", ErrInvalidConfig, int(r))
	}
	return []byte(r.String()), nil
}

func (r *Reclamation) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if s == "" {
		*r = ReclaimNone
		return nil
	}
	for k, name := range reclamationNames {
		if name == s {
			*r = k
			return nil
		}
	}
	return fmt.Errorf("%w: unknown reclamation %q", ErrInvalidConfig, s)
}

const (
	DefaultArenaBlockSize = 256
	shardsPerProc         = 4
)

// Config configures an Interner. The zero Config is valid.
type Config struct {
	Reclamation Reclamation
	// InitialCapacity pre-sizes the table for this many distinct values.
	InitialCapacity int
	// ArenaBlockSize is the number of entries allocated together in one block.
	// Default: DefaultArenaBlockSize.
	ArenaBlockSize int
	// MaxEntries bounds the number of live entries; 0 means unbounded.
	// Interning a new value beyond the bound fails with ErrExhausted.
	MaxEntries int
	// Shards is the number of independently locked table partitions, rounded
	// up to a power of two. Default: 4 * GOMAXPROCS.
	Shards int
	// Logger receives lifecycle events. Default: a no-op logger.
	Logger *zap.Logger
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	if _, ok := reclamationNames[c.Reclamation]; !ok {
		err = multierr.Append(err, fmt.Errorf("%w: unknown reclamation %d", ErrInvalidConfig, int(c.Reclamation)))
	}
	if c.InitialCapacity < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: initial_capacity %d is negative", ErrInvalidConfig, c.InitialCapacity))
	}
	if c.ArenaBlockSize < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: arena_block_size %d is negative", ErrInvalidConfig, c.ArenaBlockSize))
	}
	if c.MaxEntries < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: max_entries %d is negative", ErrInvalidConfig, c.MaxEntries))
	}
	if c.Shards < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: shards %d is negative", ErrInvalidConfig, c.Shards))
	}
	return err
}

func (c Config) withDefaults() Config {
	if c.ArenaBlockSize == 0 {
		c.ArenaBlockSize = DefaultArenaBlockSize
	}
	if c.Shards == 0 {
		c.Shards = shardsPerProc * runtime.GOMAXPROCS(0)
	}
	c.Shards = helper.NextPowerOfTwo(c.Shards)
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

type fileConfig struct {
	Reclamation     string    `yaml:"reclamation"`
	InitialCapacity sizeValue `yaml:"initial_capacity"`
	ArenaBlockSize  sizeValue `yaml:"arena_block_size"`
	MaxEntries      sizeValue `yaml:"max_entries"`
	Shards          int       `yaml:"shards"`
}

// sizeValue accepts plain integers as well as humanized sizes like "64KiB".
type sizeValue int

func (s *sizeValue) UnmarshalYAML(node *yaml.Node) error {
	var n int
	if err := node.Decode(&n); err == nil {
		*s = sizeValue(n)
		return nil
	}
	var str string
	if err := node.Decode(&str); err != nil {
		return err
	}
	b, err := humanize.ParseBytes(str)
	if err != nil {
		return fmt.Errorf("%w: line %d: %w", ErrInvalidConfig, node.Line, err)
	}
	*s = sizeValue(b)
	return nil
}

// ParseConfig reads a YAML document:
//
//	reclamation: refcounted
//	initial_capacity: 4096
//	arena_block_size: 1Ki
//	max_entries: 1M
//	shards: 64
//
// The returned Config has no Logger and has been validated.
func ParseConfig(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg := Config{
		InitialCapacity: int(fc.InitialCapacity),
		ArenaBlockSize:  int(fc.ArenaBlockSize),
		MaxEntries:      int(fc.MaxEntries),
		Shards:          fc.Shards,
	}
	if err := cfg.Reclamation.UnmarshalText([]byte(fc.Reclamation)); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
