package config

import (
	"strings"
	"time"

	"github.com/josephcopenhaver/rfc4648"
	"github.com/josephcopenhaver/rfc4648/internal/logger"
	"github.com/samber/oops"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. RFC4648_SERVER_LISTEN.
const EnvPrefix = "RFC4648"

// Keys understood by Load.
const (
	KeyAlphabet          = "alphabet"
	KeyBufferSize        = "buffer_size"
	KeyLogLevel          = "log.level"
	KeyServerListen      = "server.listen"
	KeyServerMode        = "server.mode"
	KeyServerAcceptRate  = "server.accept_rate"
	KeyServerAcceptBurst = "server.accept_burst"
	KeyServerIdleTimeout = "server.idle_timeout"
)

const (
	ModeEncode = "encode"
	ModeDecode = "decode"
)

var log = logger.Get()

type Config struct {
	Alphabet   string
	BufferSize int
	Log        LogConfig
	Server     ServerConfig
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Listen string
	// Mode is ModeEncode or ModeDecode.
	Mode string
	// AcceptRate is the number of connections accepted per second once the
	// burst allowance is spent.
	AcceptRate  float64
	AcceptBurst int
	// IdleTimeout bounds how long a connection may go without sending data.
	// Zero disables the deadline.
	IdleTimeout time.Duration
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Alphabet:   rfc4648.Base64Std.String(),
		BufferSize: 4096,
		Server: ServerConfig{
			Listen:      "127.0.0.1:1337",
			Mode:        ModeEncode,
			AcceptRate:  100,
			AcceptBurst: 10,
			IdleTimeout: 30 * time.Second,
		},
	}
}

// New returns a viper instance carrying the defaults and reading
// environment overrides.
func New() *viper.Viper {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault(KeyAlphabet, d.Alphabet)
	v.SetDefault(KeyBufferSize, d.BufferSize)
	v.SetDefault(KeyLogLevel, d.Log.Level)

	v.SetDefault(KeyServerListen, d.Server.Listen)
	v.SetDefault(KeyServerMode, d.Server.Mode)
	v.SetDefault(KeyServerAcceptRate, d.Server.AcceptRate)
	v.SetDefault(KeyServerAcceptBurst, d.Server.AcceptBurst)
	v.SetDefault(KeyServerIdleTimeout, d.Server.IdleTimeout)
}

// Load reads the optional config file into v and returns the validated
// effective configuration.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)

		if err := v.ReadInConfig(); err != nil {
			return nil, oops.Wrapf(err, "reading config file %s", file)
		}

		log.Debugf("Using config file: %s", v.ConfigFileUsed())
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromViper builds a Config from the current viper settings.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Alphabet:   v.GetString(KeyAlphabet),
		BufferSize: v.GetInt(KeyBufferSize),
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
		},
		Server: ServerConfig{
			Listen:      v.GetString(KeyServerListen),
			Mode:        strings.ToLower(strings.TrimSpace(v.GetString(KeyServerMode))),
			AcceptRate:  v.GetFloat64(KeyServerAcceptRate),
			AcceptBurst: v.GetInt(KeyServerAcceptBurst),
			IdleTimeout: v.GetDuration(KeyServerIdleTimeout),
		},
	}
}

func (c *Config) Validate() error {
	if _, err := rfc4648.ParseAlphabet(c.Alphabet); err != nil {
		return oops.Wrapf(err, "invalid %s", KeyAlphabet)
	}

	if c.BufferSize <= 0 {
		return oops.Errorf("invalid %s %d: must be positive", KeyBufferSize, c.BufferSize)
	}

	switch c.Server.Mode {
	case ModeEncode, ModeDecode:
	default:
		return oops.Errorf("invalid %s %q: want %s or %s", KeyServerMode, c.Server.Mode, ModeEncode, ModeDecode)
	}

	if c.Server.AcceptRate <= 0 {
		return oops.Errorf("invalid %s %v: must be positive", KeyServerAcceptRate, c.Server.AcceptRate)
	}

	if c.Server.AcceptBurst <= 0 {
		return oops.Errorf("invalid %s %d: must be positive", KeyServerAcceptBurst, c.Server.AcceptBurst)
	}

	if c.Server.IdleTimeout < 0 {
		return oops.Errorf("invalid %s %s: must not be negative", KeyServerIdleTimeout, c.Server.IdleTimeout)
	}

	return nil
}

// Codec returns the configured alphabet.
func (c *Config) Codec() (rfc4648.Alphabet, error) {
	a, err := rfc4648.ParseAlphabet(c.Alphabet)
	if err != nil {
		return 0, oops.Wrapf(err, "invalid %s", KeyAlphabet)
	}

	return a, nil
}

type yamlDoc struct {
	Alphabet   string `yaml:"alphabet"`
	BufferSize int    `yaml:"buffer_size"`
	Log        struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Server struct {
		Listen      string  `yaml:"listen"`
		Mode        string  `yaml:"mode"`
		AcceptRate  float64 `yaml:"accept_rate"`
		AcceptBurst int     `yaml:"accept_burst"`
		IdleTimeout string  `yaml:"idle_timeout"`
	} `yaml:"server"`
}

// YAML renders c in the same shape Load reads from a config file.
func (c *Config) YAML() ([]byte, error) {
	var doc yamlDoc

	doc.Alphabet = c.Alphabet
	doc.BufferSize = c.BufferSize
	doc.Log.Level = c.Log.Level
	doc.Server.Listen = c.Server.Listen
	doc.Server.Mode = c.Server.Mode
	doc.Server.AcceptRate = c.Server.AcceptRate
	doc.Server.AcceptBurst = c.Server.AcceptBurst
	doc.Server.IdleTimeout = c.Server.IdleTimeout.String()

	b, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, oops.Wrapf(err, "rendering config")
	}

	return b, nil
}
