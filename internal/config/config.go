package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup. Values come from
// defaults, then an optional YAML file, then NOTEKEEP_* environment
// variables, in increasing precedence.
type Config struct {
	Port           int           `mapstructure:"port"`
	DataDir        string        `mapstructure:"data_dir"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	PasswordMinLen int           `mapstructure:"password_min_len"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
}

func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8000)
	v.SetDefault("data_dir", "./data")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", time.Hour)
	v.SetDefault("password_min_len", 6)
	v.SetDefault("bcrypt_cost", 0) // 0 means the bcrypt default

	v.SetEnvPrefix("notekeep")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// JWT_SECRET without the prefix is honored for compatibility with
	// the usual deployment env.
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}

	return &cfg, nil
}
