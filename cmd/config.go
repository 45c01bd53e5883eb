package main

import (
	"fmt"
	"strings"

	"github.com/newcomb-luke/wustite/boot"
	"github.com/newcomb-luke/wustite/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment variables, e.g. WUSTITE_DEBUG.
	EnvPrefix = "WUSTITE"

	defaultMemoryMegabytes = 16
	maxMemoryMegabytes     = 4096
)

// Settings hold everything the commands can be configured with.
type Settings struct {
	Debug           bool   `mapstructure:"debug"`
	LogFormat       string `mapstructure:"log_format"`
	MemoryMegabytes uint64 `mapstructure:"memory_megabytes"`

	Boot boot.Config `mapstructure:",squash"`
}

func setDefaults(v *viper.Viper) {
	defaults := boot.DefaultConfig()

	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("memory_megabytes", defaultMemoryMegabytes)
	v.SetDefault("drive_number", defaults.DriveNumber)
	v.SetDefault("kernel_name", defaults.KernelName)
	v.SetDefault("map_megabytes", defaults.MapMegabytes)
	v.SetDefault("memory_map_entries", defaults.MemoryMapEntries)
}

// LoadSettings merges defaults, an optional config file and the environment.
func LoadSettings(fs afero.Fs, configFile string) (Settings, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		err := v.ReadInConfig()
		if err != nil {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings := Settings{}
	err := v.Unmarshal(&settings)
	if err != nil {
		return Settings{}, fmt.Errorf("error parsing config: %w", err)
	}
	err = settings.Validate()
	if err != nil {
		return Settings{}, fmt.Errorf("invalid config: %w", err)
	}
	return settings, nil
}

// Validate checks the emulated machine's settings and the boot settings.
func (s Settings) Validate() error {
	if s.MemoryMegabytes == 0 || s.MemoryMegabytes > maxMemoryMegabytes {
		message := fmt.Sprintf(
			"memory must be between 1 and %d MiB, got %d", maxMemoryMegabytes, s.MemoryMegabytes)
		return errors.ErrInvalidArgument.WithMessage(message)
	}
	return s.Boot.Validate()
}
