package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Search struct {
		MaxPages                int `yaml:"max_pages" json:"max_pages"`
		ResultsPerPage          int `yaml:"results_per_page" json:"results_per_page"`
		FirstPageTimeoutSeconds int `yaml:"first_page_timeout_seconds" json:"first_page_timeout_seconds"`
		PageTimeoutSeconds      int `yaml:"page_timeout_seconds" json:"page_timeout_seconds"`
		PageDelayMillis         int `yaml:"page_delay_ms" json:"page_delay_ms"`
		RetryDelayMillis        int `yaml:"retry_delay_ms" json:"retry_delay_ms"`
	} `yaml:"search" json:"search"`

	Budget struct {
		MonthlyCeiling int `yaml:"monthly_ceiling" json:"monthly_ceiling"`
	} `yaml:"budget" json:"budget"`

	Cache struct {
		TTLHours   int `yaml:"ttl_hours" json:"ttl_hours"`
		MaxEntries int `yaml:"max_entries" json:"max_entries"`
	} `yaml:"cache" json:"cache"`

	Upstream struct {
		BaseURL           string  `yaml:"base_url" json:"base_url"`
		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst             int     `yaml:"burst" json:"burst"`
	} `yaml:"upstream" json:"upstream"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Default returns the engine's built-in configuration, used when no default
// config file ships next to the binary.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.Search.MaxPages = 5
	cfg.Search.ResultsPerPage = 10
	cfg.Search.FirstPageTimeoutSeconds = 10
	cfg.Search.PageTimeoutSeconds = 8
	cfg.Search.PageDelayMillis = 300
	cfg.Search.RetryDelayMillis = 2000
	cfg.Budget.MonthlyCeiling = 200
	cfg.Cache.TTLHours = 24
	cfg.Cache.MaxEntries = 50
	cfg.Upstream.BaseURL = "https://jsearch.p.rapidapi.com"
	cfg.Upstream.RequestsPerSecond = 1.0
	cfg.Upstream.Burst = 2
	return cfg
}
