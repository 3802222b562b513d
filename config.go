/*
Copyright 2025 The FrameGen Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package framegen

import (
	"fmt"

	"github.com/spf13/viper"
	"goarrg.com/debug"
	"goarrg.com/gmath"
)

// Mode selects the doubling target. The core engine synthesises one
// in-between image per host present; higher modes exist for external
// interpolators that can fill more than one slot.
type Mode uint8

const (
	ModeOff Mode = iota
	Mode60
	Mode90
	Mode120
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case Mode60:
		return "60"
	case Mode90:
		return "90"
	case Mode120:
		return "120"
	}
	return "unknown"
}

type Config struct {
	Enabled           bool    `mapstructure:"enabled"`
	Mode              Mode    `mapstructure:"mode"`
	TargetFrameTimeMs float32 `mapstructure:"target_frame_time_ms"`
	Quality           float32 `mapstructure:"quality"`
	ModelScale        float32 `mapstructure:"model_scale"`
	ThermalProtection bool    `mapstructure:"thermal_protection"`
	TargetRefreshRate uint32  `mapstructure:"target_refresh_rate"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		Mode:              Mode60,
		TargetFrameTimeMs: 8.0,
		Quality:           0.5,
		ModelScale:        0.5,
		ThermalProtection: true,
		TargetRefreshRate: 120,
	}
}

// LoadConfig reads the layer config from cfgFile, or from framegen.yaml
// under /etc/framegen or the working directory when empty. FRAMEGEN_*
// environment variables override file values. When no file is found in
// those search paths the defaults are used; an explicit cfgFile that
// cannot be read is returned as an error along with the defaults.
func LoadConfig(cfgFile string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("framegen")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/framegen")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("FRAMEGEN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, debug.ErrorWrapf(err, "failed to read config")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, debug.ErrorWrapf(err, "failed to unmarshal config")
	}

	cfg.validate()
	return cfg, nil
}

// validate clamps out-of-range values instead of failing: the layer
// lives inside a host process that must keep rendering no matter what
// the config file says.
func (c *Config) validate() {
	if c.TargetFrameTimeMs <= 0 {
		c.TargetFrameTimeMs = DefaultConfig().TargetFrameTimeMs
	}
	if !gmath.InRange(c.Quality, 0, 1) {
		c.Quality = min(1, max(0, c.Quality))
	}
	if !gmath.InRange(c.ModelScale, scaleMin, scaleMax) {
		c.ModelScale = min(scaleMax, max(scaleMin, c.ModelScale))
	}
	if c.Mode > Mode120 {
		c.Mode = Mode60
	}
	if c.TargetRefreshRate == 0 {
		c.TargetRefreshRate = DefaultConfig().TargetRefreshRate
	}
}

func (c Config) String() string {
	return fmt.Sprintf("enabled=%t mode=%s budget=%.2fms quality=%.2f scale=%.2f thermal=%t refresh=%d",
		c.Enabled, c.Mode.String(), c.TargetFrameTimeMs, c.Quality, c.ModelScale,
		c.ThermalProtection, c.TargetRefreshRate)
}
