package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".opusmux"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config is the on-disk configuration: a set of named profiles and the one
// currently in use, similar to kubectl contexts.
type Config struct {
	// CurrentProfile is the name of the active profile
	CurrentProfile string `yaml:"current_profile,omitempty"`

	// Profiles maps profile names to their settings
	Profiles map[string]*Profile `yaml:"profiles,omitempty"`

	configPath string
}

// Profile holds defaults for the encode and webm commands. Zero values mean
// "use the built-in default"; command-line flags override every field.
type Profile struct {
	Name string `yaml:"name"`

	// SampleRate is the encoder input rate in Hz
	SampleRate int `yaml:"sample_rate,omitempty"`

	// Channels is 1 or 2
	Channels int `yaml:"channels,omitempty"`

	// FrameMillis is the encoder frame duration in milliseconds
	FrameMillis int `yaml:"frame_ms,omitempty"`

	// Bitrate is the Opus target bitrate in bits per second
	Bitrate int `yaml:"bitrate,omitempty"`

	// Complexity is the Opus complexity, 0-10
	Complexity *int `yaml:"complexity,omitempty"`

	// Application is one of voip, audio, lowdelay
	Application string `yaml:"application,omitempty"`

	// Vendor is written into the comment header
	Vendor string `yaml:"vendor,omitempty"`

	// FlushPackets puts every data packet on its own page
	FlushPackets *bool `yaml:"flush_packets,omitempty"`

	// TagsFile is a YAML or JSON file of comment tags
	TagsFile string `yaml:"tags_file,omitempty"`

	// S3 configures s3:// inputs and outputs
	S3 *S3Settings `yaml:"s3,omitempty"`
}

// S3Settings holds S3 client settings.
type S3Settings struct {
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	PathStyle       bool   `yaml:"path_style,omitempty"`
}

// ProfileKeys lists the keys accepted by Profile.Set.
var ProfileKeys = []string{
	"sample_rate", "channels", "frame_ms", "bitrate", "complexity",
	"application", "vendor", "flush_packets", "tags_file",
	"s3.region", "s3.endpoint", "s3.access_key_id", "s3.secret_access_key", "s3.path_style",
}

// LoadConfig loads or creates the configuration at ~/.opusmux/config.yaml
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath("")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		paths, err := NewPaths()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = paths.ConfigFile()
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		Profiles:   make(map[string]*Profile),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*Profile)
	}
	cfg.configPath = configPath
	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// AddProfile adds or replaces a profile
func (c *Config) AddProfile(name string, p *Profile) error {
	p.Name = name
	c.Profiles[name] = p
	return c.Save()
}

// DeleteProfile removes a profile
func (c *Config) DeleteProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return c.Save()
}

// UseProfile sets the current profile
func (c *Config) UseProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	c.CurrentProfile = name
	return c.Save()
}

// GetProfile returns a specific profile
func (c *Config) GetProfile(name string) (*Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// ResolveProfile returns the named profile, or the current one if name is
// empty. With neither set it returns an empty profile, so every setting
// falls back to its default.
func (c *Config) ResolveProfile(name string) (*Profile, error) {
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return &Profile{}, nil
	}
	return c.GetProfile(name)
}

// ListProfiles returns all profile names, sorted
func (c *Config) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Set assigns one setting by key. See ProfileKeys.
func (p *Profile) Set(key, value string) error {
	if strings.HasPrefix(key, "s3.") {
		if p.S3 == nil {
			p.S3 = &S3Settings{}
		}
		return p.S3.set(strings.TrimPrefix(key, "s3."), value)
	}

	var err error
	switch key {
	case "sample_rate":
		p.SampleRate, err = strconv.Atoi(value)
	case "channels":
		p.Channels, err = strconv.Atoi(value)
	case "frame_ms":
		p.FrameMillis, err = strconv.Atoi(value)
	case "bitrate":
		p.Bitrate, err = strconv.Atoi(value)
	case "complexity":
		var v int
		if v, err = strconv.Atoi(value); err == nil {
			p.Complexity = &v
		}
	case "application":
		switch value {
		case "voip", "audio", "lowdelay":
			p.Application = value
		default:
			return fmt.Errorf("invalid application %q (want voip, audio or lowdelay)", value)
		}
	case "vendor":
		p.Vendor = value
	case "flush_packets":
		var v bool
		if v, err = strconv.ParseBool(value); err == nil {
			p.FlushPackets = &v
		}
	case "tags_file":
		p.TagsFile = value
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

func (s *S3Settings) set(key, value string) error {
	switch key {
	case "region":
		s.Region = value
	case "endpoint":
		s.Endpoint = value
	case "access_key_id":
		s.AccessKeyID = value
	case "secret_access_key":
		s.SecretAccessKey = value
	case "path_style":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for s3.path_style: %w", err)
		}
		s.PathStyle = v
	default:
		return fmt.Errorf("unknown key %q", "s3."+key)
	}
	return nil
}

// Masked returns a copy of the profile with secrets masked for display.
func (p *Profile) Masked() *Profile {
	cp := *p
	if p.S3 != nil {
		s3 := *p.S3
		s3.SecretAccessKey = MaskSecret(s3.SecretAccessKey)
		cp.S3 = &s3
	}
	return &cp
}

// MaskSecret masks a secret for display
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
