package speller

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ErrConfig is returned for configuration values a Speller cannot use.
var ErrConfig = errors.New("speller: invalid config")

// Config holds the Speller settings that can be read from a TOML file:
//
//	max_distance = 2
//	cache_size = 1024
//	workers = 8
type Config struct {
	MaxDistance int `toml:"max_distance"`
	CacheSize   int `toml:"cache_size"`
	Workers     int `toml:"workers"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		MaxDistance: 1,
		Workers:     4,
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Keys missing from the file
// keep their defaults and a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	} else if err != nil {
		return cfg, errors.Wrapf(err, "reading %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.Wrapf(ErrConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}
	return cfg, cfg.Validate()
}

// Validate rejects negative settings.
func (c Config) Validate() error {
	switch {
	case c.MaxDistance < 0:
		return errors.Wrapf(ErrConfig, "max_distance %d", c.MaxDistance)
	case c.CacheSize < 0:
		return errors.Wrapf(ErrConfig, "cache_size %d", c.CacheSize)
	case c.Workers < 0:
		return errors.Wrapf(ErrConfig, "workers %d", c.Workers)
	}
	return nil
}
