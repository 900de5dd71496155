package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file base name searched for (manifold.yaml, .yml, .json, .toml).
const FileName = "manifold"

// Config holds all configuration for manifold
type Config struct {
	Sources  SourcesConfig  `mapstructure:"sources" json:"sources"`
	Output   OutputConfig   `mapstructure:"output" json:"output"`
	Validate ValidateConfig `mapstructure:"validate" json:"validate"`

	// File is the config file that was read, empty when only defaults applied.
	File string `mapstructure:"-" json:"-"`
}

// SourcesConfig describes the tree of per-server directories
type SourcesConfig struct {
	Root         string   `mapstructure:"root" json:"root"`
	ManifestFile string   `mapstructure:"manifest_file" json:"manifest_file"`
	SchemaFile   string   `mapstructure:"schema_file" json:"schema_file"`
	Reserved     []string `mapstructure:"reserved" json:"reserved"`
}

// OutputConfig describes where merge writes the catalog and assets
type OutputConfig struct {
	Dir         string `mapstructure:"dir" json:"dir"`
	CatalogFile string `mapstructure:"catalog_file" json:"catalog_file"`
	AssetExt    string `mapstructure:"asset_ext" json:"asset_ext"`
}

// ValidateConfig holds validation pass options
type ValidateConfig struct {
	RequireRoles bool     `mapstructure:"require_roles" json:"require_roles"`
	StrictHeader bool     `mapstructure:"strict_header" json:"strict_header"`
	Exclude      []string `mapstructure:"exclude" json:"exclude"`
	NoIgnore     bool     `mapstructure:"no_ignore" json:"no_ignore"`
	Format       string   `mapstructure:"format" json:"format"`
}

var defaultConfig = Config{
	Sources: SourcesConfig{
		Root:         "servers",
		ManifestFile: "manifest.json",
		SchemaFile:   "manifest-schema.json",
		Reserved:     []string{"merged"},
	},
	Output: OutputConfig{
		Dir:         "merged",
		CatalogFile: "merged-manifest.json",
		AssetExt:    "png",
	},
	Validate: ValidateConfig{
		RequireRoles: true,
		StrictHeader: false,
		Exclude:      []string{},
		NoIgnore:     false,
		Format:       "markdown",
	},
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	c := defaultConfig
	c.Sources.Reserved = append([]string{}, defaultConfig.Sources.Reserved...)
	c.Validate.Exclude = []string{}
	return &c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources.root", defaultConfig.Sources.Root)
	v.SetDefault("sources.manifest_file", defaultConfig.Sources.ManifestFile)
	v.SetDefault("sources.schema_file", defaultConfig.Sources.SchemaFile)
	v.SetDefault("sources.reserved", defaultConfig.Sources.Reserved)

	v.SetDefault("output.dir", defaultConfig.Output.Dir)
	v.SetDefault("output.catalog_file", defaultConfig.Output.CatalogFile)
	v.SetDefault("output.asset_ext", defaultConfig.Output.AssetExt)

	v.SetDefault("validate.require_roles", defaultConfig.Validate.RequireRoles)
	v.SetDefault("validate.strict_header", defaultConfig.Validate.StrictHeader)
	v.SetDefault("validate.exclude", defaultConfig.Validate.Exclude)
	v.SetDefault("validate.no_ignore", defaultConfig.Validate.NoIgnore)
	v.SetDefault("validate.format", defaultConfig.Validate.Format)
}

// LoadConfig loads configuration from defaults, an optional config file and
// MANIFOLD_* environment variables, then validates the result. When
// configFile is empty manifold.{yaml,yml,json,toml} is searched for in the
// current directory and the manifold home; a missing file is not an error.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if home, err := GetManifoldHome(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("MANIFOLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.File = v.ConfigFileUsed()

	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// GetManifoldHome returns the manifold home directory ($MANIFOLD_HOME or ~/.manifold).
func GetManifoldHome() (string, error) {
	if home := os.Getenv("MANIFOLD_HOME"); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}
	return filepath.Join(homeDir, ".manifold"), nil
}
