package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the effective dashgen configuration.
type Config struct {
	// Input/output paths for the generate run.
	Observations string `mapstructure:"observations" yaml:"observations"`
	Incidents    string `mapstructure:"incidents" yaml:"incidents"`
	OutDir       string `mapstructure:"outdir" yaml:"outdir"`

	// AssetBase is the public URL prefix recorded in summary.json for
	// produced chart images.
	AssetBase string `mapstructure:"asset_base" yaml:"asset_base"`

	// TopN limits categorical bar charts to the most frequent values.
	TopN int `mapstructure:"top_n" yaml:"top_n"`

	// Aliases maps a logical field name to its accepted column names in
	// priority order. Entries here replace the built-in list for that
	// field only.
	Aliases map[string][]string `mapstructure:"aliases" yaml:"aliases"`
}

// DefaultAliases returns the built-in column alias lists. Uploaded CSVs
// drift in naming across sources, so every column lookup goes through
// one of these lists instead of a single canonical name.
func DefaultAliases() map[string][]string {
	return map[string][]string{
		"action_taken":     {"Action Taken", "Action taken"},
		"observation_type": {"Observation Type", "Type"},
		"observation_site": {"Site / Location", "Site", "Location"},
		"incident_date":    {"Incident Date", "Date", "incidentDate", "incident_date"},
		"severity":         {"Severity", "severityScore", "Severity Score"},
		"likelihood":       {"Likelihood", "likelihoodScore", "Likelihood Score"},
		"category":         {"Category"},
		"department":       {"Department"},
		"site_project":     {"Site / Project"},
		"location":         {"Location"},
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.dashgen/config.yaml, creating the directory if
// necessary.
func Save(c *Config, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".dashgen")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DASHGEN")
	v.AutomaticEnv()

	v.SetDefault("observations", "data/observations.csv")
	v.SetDefault("incidents", "data/incidents.csv")
	v.SetDefault("outdir", "public/dashboard-assets")
	v.SetDefault("asset_base", "/dashboard-assets")
	v.SetDefault("top_n", 10)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".dashgen"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Configured alias lists override per field, not wholesale.
	merged := DefaultAliases()
	for field, list := range c.Aliases {
		if len(list) > 0 {
			merged[field] = list
		}
	}
	c.Aliases = merged
	return &c, nil
}
