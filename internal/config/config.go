// Package config holds the model hyperparameters and loads them with
// viper from YAML, TOML or JSON files and MACE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/mace/internal/errkind"
	"github.com/born-ml/mace/internal/nn"
	"github.com/born-ml/mace/internal/o3"
)

// MaxCorrelation is the highest body order the symmetric contraction
// supports.
const MaxCorrelation = 3

// Config is the full set of recognized model options.
type Config struct {
	// Elements lists atomic numbers in species-index order.
	Elements []int `mapstructure:"elements" yaml:"elements"`
	// AtomicEnergies are the reference energies E0 per element, in the
	// order of Elements. Empty means zero.
	AtomicEnergies []float64 `mapstructure:"atomic_energies" yaml:"atomic_energies"`
	// AvgNumNeighbors normalizes the neighbor sum.
	AvgNumNeighbors float64 `mapstructure:"avg_num_neighbors" yaml:"avg_num_neighbors"`

	RMax          float64 `mapstructure:"r_max" yaml:"r_max"`
	NumBessel     int     `mapstructure:"num_bessel" yaml:"num_bessel"`
	NumPolyCutoff int     `mapstructure:"num_polynomial_cutoff" yaml:"num_polynomial_cutoff"`
	MaxEll        int     `mapstructure:"max_ell" yaml:"max_ell"`

	NumInteractions int `mapstructure:"num_interactions" yaml:"num_interactions"`
	// Interactions optionally names the block variant of every layer
	// ("agnostic" or "residual").
	Interactions []string `mapstructure:"interactions" yaml:"interactions,omitempty"`
	// Channels and HiddenMaxL define the hidden irreps
	// Channels x 0e + Channels x 1o + ... up to HiddenMaxL.
	Channels     int    `mapstructure:"channels" yaml:"channels"`
	HiddenMaxL   int    `mapstructure:"hidden_max_l" yaml:"hidden_max_l"`
	Correlation  int    `mapstructure:"correlation" yaml:"correlation"`
	MLPWidth     int    `mapstructure:"mlp_width" yaml:"mlp_width"`
	RadialHidden []int  `mapstructure:"radial_hidden" yaml:"radial_hidden"`
	// Gate is the activation of the nonlinear readout. The radial network
	// always uses SiLU.
	Gate         string `mapstructure:"gate" yaml:"gate"`

	Seed     uint64 `mapstructure:"seed" yaml:"seed"`
	Workers  int    `mapstructure:"workers" yaml:"workers"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns the default configuration for a hydrogen/oxygen model.
func Default() Config {
	return Config{
		Elements:        []int{1, 8},
		AtomicEnergies:  []float64{-13.663, -2041.85},
		AvgNumNeighbors: 1,
		RMax:            5.0,
		NumBessel:       8,
		NumPolyCutoff:   5,
		MaxEll:          3,
		NumInteractions: 2,
		Channels:        128,
		HiddenMaxL:      1,
		Correlation:     3,
		MLPWidth:        16,
		RadialHidden:    []int{64, 64, 64},
		Gate:            "silu",
		LogLevel:        "info",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("elements", d.Elements)
	v.SetDefault("atomic_energies", d.AtomicEnergies)
	v.SetDefault("avg_num_neighbors", d.AvgNumNeighbors)
	v.SetDefault("r_max", d.RMax)
	v.SetDefault("num_bessel", d.NumBessel)
	v.SetDefault("num_polynomial_cutoff", d.NumPolyCutoff)
	v.SetDefault("max_ell", d.MaxEll)
	v.SetDefault("num_interactions", d.NumInteractions)
	v.SetDefault("interactions", []string{})
	v.SetDefault("channels", d.Channels)
	v.SetDefault("hidden_max_l", d.HiddenMaxL)
	v.SetDefault("correlation", d.Correlation)
	v.SetDefault("mlp_width", d.MLPWidth)
	v.SetDefault("radial_hidden", d.RadialHidden)
	v.SetDefault("gate", d.Gate)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads a configuration file on top of the defaults. An empty path
// loads defaults and environment overrides only. Environment variables
// use the MACE_ prefix, e.g. MACE_R_MAX=4.5.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Dump writes c as YAML.
func Dump(c Config, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks every option and returns all problems joined, each
// wrapping ErrConfiguration.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format+": %w", append(args, errkind.ErrConfiguration)...))
	}

	if len(c.Elements) == 0 {
		bad("no elements")
	}
	if len(c.AtomicEnergies) != 0 && len(c.AtomicEnergies) != len(c.Elements) {
		bad("%d atomic energies for %d elements", len(c.AtomicEnergies), len(c.Elements))
	}
	for i, e := range c.AtomicEnergies {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			bad("atomic energy %d is not finite", i)
		}
	}
	if !(c.AvgNumNeighbors > 0) || math.IsInf(c.AvgNumNeighbors, 0) {
		bad("avg_num_neighbors %v must be positive", c.AvgNumNeighbors)
	}
	if !(c.RMax > 0) || math.IsInf(c.RMax, 0) {
		bad("r_max %v must be positive", c.RMax)
	}
	if c.NumBessel < 1 {
		bad("num_bessel %d must be at least 1", c.NumBessel)
	}
	if c.NumPolyCutoff < 1 {
		bad("num_polynomial_cutoff %d must be at least 1", c.NumPolyCutoff)
	}
	if c.MaxEll < 0 || c.MaxEll > o3.MaxL {
		bad("max_ell %d outside [0, %d]", c.MaxEll, o3.MaxL)
	}
	if c.NumInteractions < 1 {
		bad("num_interactions %d must be at least 1", c.NumInteractions)
	}
	if len(c.Interactions) != 0 && len(c.Interactions) != c.NumInteractions {
		bad("%d interaction variants for %d layers", len(c.Interactions), c.NumInteractions)
	}
	if c.Channels < 1 {
		bad("channels %d must be at least 1", c.Channels)
	}
	if c.HiddenMaxL < 0 || c.HiddenMaxL > c.MaxEll {
		bad("hidden_max_l %d outside [0, max_ell=%d]", c.HiddenMaxL, c.MaxEll)
	}
	if c.Correlation < 1 || c.Correlation > MaxCorrelation {
		bad("correlation %d outside [1, %d]", c.Correlation, MaxCorrelation)
	}
	if c.MLPWidth < 1 {
		bad("mlp_width %d must be at least 1", c.MLPWidth)
	}
	for i, w := range c.RadialHidden {
		if w < 1 {
			bad("radial_hidden[%d] = %d must be at least 1", i, w)
		}
	}
	if _, err := nn.ParseActivation(c.Gate); err != nil {
		bad("gate: %v", err)
	}
	if c.Workers < 0 {
		bad("workers %d must not be negative", c.Workers)
	}
	return errors.Join(errs...)
}
