package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Storage StorageConfig `mapstructure:"storage"`
	Uploads UploadsConfig `mapstructure:"uploads"`
}

type DBConfig struct {
	Source string `mapstructure:"source"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type UploadsConfig struct {
	PhotoMaxBytes   int64    `mapstructure:"photo_max_bytes"`
	VideoMaxBytes   int64    `mapstructure:"video_max_bytes"`
	PhotoExtensions []string `mapstructure:"photo_extensions"`
	VideoExtensions []string `mapstructure:"video_extensions"`
}

func Load() (*Config, error) {
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/configs")
	viper.SetConfigName("settings")
	viper.SetConfigType("yml")

	viper.SetDefault("storage.path", "./uploads")
	viper.SetDefault("uploads.photo_max_bytes", 10<<20)
	viper.SetDefault("uploads.video_max_bytes", 300<<20)
	viper.SetDefault("uploads.photo_extensions", []string{".jpg", ".jpeg", ".png", ".gif"})
	viper.SetDefault("uploads.video_extensions", []string{".mp4", ".webm", ".mov"})

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
