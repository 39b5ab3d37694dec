// Package config loads config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	Artifacts struct {
		ScalerType string `yaml:"scaler_type"`
		ScalerPath string `yaml:"scaler_path"`
		ModelType  string `yaml:"model_type"`
		ModelPath  string `yaml:"model_path"`
		Watch      bool   `yaml:"watch"`
	} `yaml:"artifacts"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
}

// Default returns the configuration used for any field config.yaml leaves out.
func Default() *Config {
	var c Config
	c.Http.Port = 8501
	c.Http.Timeout = 30 * time.Second
	c.Http.AllowedOrigins = []string{"*"}
	c.Http.MaxBodyBytes = 64 << 10
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.MaxSizeMB = 50
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 14
	c.Artifacts.ScalerType = "standard"
	c.Artifacts.ScalerPath = filepath.Join("artifacts", "scaler.json")
	c.Artifacts.ModelType = "linear"
	c.Artifacts.ModelPath = filepath.Join("artifacts", "calories_model.json")
	c.Cache.Size = 256
	return &c
}

// Find looks for name in the working directory, then one level up so the
// binaries also work when started from cmd/.
func Find(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	parent := filepath.Join("..", name)
	if _, err := os.Stat(parent); err == nil {
		return parent, nil
	}
	return "", fmt.Errorf("%s not found in . or ..", name)
}

// Load reads path on top of Default. Relative artifact and log paths are
// resolved against the directory holding the config file.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	base := filepath.Dir(path)
	config.Artifacts.ScalerPath = resolve(base, config.Artifacts.ScalerPath)
	config.Artifacts.ModelPath = resolve(base, config.Artifacts.ModelPath)
	if config.Log.File != "" {
		config.Log.File = resolve(base, config.Log.File)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.Artifacts.ScalerPath == "" || c.Artifacts.ModelPath == "" {
		return errors.New("artifacts.scaler_path and artifacts.model_path are required")
	}
	if c.Cache.Size < 0 {
		return errors.New("cache.size must not be negative")
	}
	return nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
