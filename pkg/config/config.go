package config

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config locates the card service and the local token cache.
type Config interface {
	ServiceURL() string
	TokenPath() string
}

// Load reads the .flip config file, falling back to defaults. Settings
// can be overridden with FLIP_SERVICE and FLIP_TOKEN.
func Load() (Config, error) {
	viper.SetDefault("service", "http://localhost:8089")
	viper.SetDefault("token", "~/.flip/token.json")
	viper.SetConfigName(".flip") // .yaml is implicit
	viper.SetEnvPrefix("FLIP")
	viper.AutomaticEnv()

	if override := os.Getenv("FLIP_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &fileConfig{
		Service: viper.GetString("service"),
		Token:   viper.GetString("token"),
	}, nil
}

type fileConfig struct {
	Service string `json:"service"`
	Token   string `json:"token"`
}

func (f *fileConfig) ServiceURL() string {
	return f.Service
}

func (f *fileConfig) TokenPath() string {
	p, err := homedir.Expand(f.Token)
	if err != nil {
		return f.Token
	}
	return filepath.Clean(p)
}
