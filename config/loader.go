package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem is the part of the host the loader touches.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFileSystem struct{}

func (osFileSystem) Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func (osFileSystem) LoadEnv(p string) error { return godotenv.Load(p) }

// Options controls LoadConfig.
type Options struct {
	FileSystem FileSystem
	// ConfigFile must exist when set. Empty searches the standard locations.
	ConfigFile string
	EnvFile    string
	// EnvPrefix defaults to the upper-cased process name.
	EnvPrefix string
}

// Option mutates Options.
type Option func(*Options)

// WithFileSystem replaces the host filesystem.
func WithFileSystem(fs FileSystem) Option { return func(o *Options) { o.FileSystem = fs } }

// WithConfigFile names the YAML file to read.
func WithConfigFile(p string) Option { return func(o *Options) { o.ConfigFile = p } }

// WithEnvFile names the .env file to load.
func WithEnvFile(p string) Option { return func(o *Options) { o.EnvFile = p } }

// WithEnvPrefix sets the prefix of environment overrides.
func WithEnvPrefix(prefix string) Option { return func(o *Options) { o.EnvPrefix = prefix } }

// Files are the paths LoadConfig reads. Empty means none was found.
type Files struct {
	Config string
	Env    string
}

// Locate resolves the files for process name. Explicit paths in o win;
// otherwise the first existing candidate is used:
//
//	./<name>.yml ./<name>.yaml ./config/<name>.yml ./cmd/<name>/config.yml ./config.yml
//
// and .env.<name> then .env in ".", "./config" and "./cmd/<name>".
func Locate(fs FileSystem, name string, o Options) Files {
	f := Files{Config: o.ConfigFile, Env: o.EnvFile}
	cmdDir := "./cmd/" + name
	if f.Config == "" {
		f.Config = firstExisting(fs,
			"./"+name+".yml",
			"./"+name+".yaml",
			"./config/"+name+".yml",
			cmdDir+"/config.yml",
			"./config.yml",
		)
	}
	if f.Env == "" {
		var candidates []string
		for _, dir := range []string{".", "./config", cmdDir} {
			candidates = append(candidates, path.Join(dir, ".env."+name), path.Join(dir, ".env"))
		}
		f.Env = firstExisting(fs, candidates...)
	}
	return f
}

func firstExisting(fs FileSystem, paths ...string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// LoadConfig decodes the configuration of process name into cfg. The YAML
// file is read, the .env file is loaded into the environment, and variables
// carrying the prefix override file values: with prefix DATAFLOW,
// DATAFLOW_TASK_KEY_TYPE sets task.key_type.
func LoadConfig(name string, cfg any, opts ...Option) error {
	o := Options{FileSystem: osFileSystem{}, EnvPrefix: envPrefix(name)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ConfigFile != "" && !o.FileSystem.Exists(o.ConfigFile) {
		return fmt.Errorf("config file %s not found", o.ConfigFile)
	}
	files := Locate(o.FileSystem, name, o)

	v := viper.New()
	if files.Config != "" {
		v.SetConfigFile(files.Config)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", files.Config, err)
		}
	}
	if files.Env != "" && o.FileSystem.Exists(files.Env) {
		if err := o.FileSystem.LoadEnv(files.Env); err != nil {
			return fmt.Errorf("load env %s: %w", files.Env, err)
		}
	}
	overlayEnv(v, o.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode %s config: %w", name, err)
	}
	return nil
}

func envPrefix(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// overlayEnv sets each PREFIX_ variable on v under every key it may address.
func overlayEnv(v *viper.Viper, prefix string, environ []string) {
	if prefix == "" {
		return
	}
	prefix += "_"
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || len(key) <= len(prefix) || !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, k := range envKeys(key[len(prefix):]) {
			v.Set(k, value)
		}
	}
}

// maxEnvSegments bounds envKeys to 2^(n-1) keys.
const maxEnvSegments = 8

// envKeys maps an env name to the config keys it may address. Keys contain
// underscores themselves, so each separator becomes either "." or "_":
//
//	TASK_KEY_TYPE -> task_key_type task_key.type task.key_type task.key.type
//
// Names with more than maxEnvSegments segments only map to the flat and
// fully dotted forms.
func envKeys(name string) []string {
	parts := strings.Split(strings.ToLower(name), "_")
	if len(parts) > maxEnvSegments {
		return []string{strings.Join(parts, "_"), strings.Join(parts, ".")}
	}
	gaps := len(parts) - 1
	keys := make([]string, 0, 1<<gaps)
	for mask := 0; mask < 1<<gaps; mask++ {
		var b strings.Builder
		b.WriteString(parts[0])
		for i, p := range parts[1:] {
			if mask&(1<<(gaps-1-i)) != 0 {
				b.WriteByte('.')
			} else {
				b.WriteByte('_')
			}
			b.WriteString(p)
		}
		keys = append(keys, b.String())
	}
	return keys
}
