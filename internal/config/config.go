package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	// 前端静态文件目录，为空时不挂载
	StaticDir string `mapstructure:"static_dir"`

	// 开启后提供快速开局接口与 X-Dev-Player-Id 视角切换
	DevTools bool `mapstructure:"dev_tools"`

	DefaultTheme string `mapstructure:"default_theme"`
	// 为空时使用内置角色表
	CatalogFile string `mapstructure:"catalog_file"`

	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

const envPrefix = "WHODUNNIT"

var cfg *AppConfig

func GetConfig() *AppConfig {
	if cfg == nil {
		cfg = InitConfig()
	}

	return cfg
}

// InitConfig 从当前目录加载配置，失败时直接 panic
func InitConfig() *AppConfig {
	config, err := LoadConfig(".")
	if err != nil {
		panic(err)
	}

	return config
}

// LoadConfig 读取 dir 下的 app_config.json，并用 WHODUNNIT_ 前缀的环境变量覆盖。
// 配置文件不存在时只使用默认值与环境变量。
func LoadConfig(dir string) (*AppConfig, error) {
	v := viper.New()

	v.SetConfigName("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("加载配置失败: %w", err)
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("配置无效: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("static_dir", "")
	v.SetDefault("dev_tools", false)
	v.SetDefault("default_theme", "snowed_in")
	v.SetDefault("catalog_file", "")
	v.SetDefault("session_ttl", "6h")
	v.SetDefault("cleanup_interval", "1m")
}

func (c *AppConfig) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup_interval must be positive")
	}
	return nil
}
