// Package config loads application configuration from a YAML file,
// environment variables, and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	Analytics Analytics `mapstructure:"analytics"`
	Search    Search    `mapstructure:"search"`
	AI        AI        `mapstructure:"ai"`
	Notion    Notion    `mapstructure:"notion"`
	Report    Report    `mapstructure:"report"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// Analytics holds the Google Analytics 4 connection settings
type Analytics struct {
	PropertyID      string `mapstructure:"property_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// Search holds the Google Search Console connection settings
type Search struct {
	SiteURL         string `mapstructure:"site_url"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	TemplatePath string `mapstructure:"template_path"`
}

// Notion holds the publishing target settings
type Notion struct {
	Token        string `mapstructure:"token"`
	ParentPageID string `mapstructure:"parent_page_id"`
}

// Report holds report tuning knobs
type Report struct {
	WindowDays          int     `mapstructure:"window_days"`
	OppMinImpressions   int64   `mapstructure:"opp_min_impressions"`
	OppMaxCTR           float64 `mapstructure:"opp_max_ctr"`
	OppMaxPosition      float64 `mapstructure:"opp_max_position"`
	OppUpliftCTR        float64 `mapstructure:"opp_uplift_ctr"`
	OppLimit            int     `mapstructure:"opp_limit"`
	VerificationSection bool    `mapstructure:"verification_section"`
}

var globalConfig *Config

// Load reads configuration from the given file, or from .sitewatch.yaml
// in the working directory or home when no file is given. Environment
// variables override file values.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".sitewatch")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Test helper.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".sitewatch-data")

	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash")

	viper.SetDefault("report.window_days", 7)
	viper.SetDefault("report.opp_min_impressions", 50)
	viper.SetDefault("report.opp_max_ctr", 0.03)
	viper.SetDefault("report.opp_max_position", 20.0)
	viper.SetDefault("report.opp_uplift_ctr", 0.05)
	viper.SetDefault("report.opp_limit", 10)
	viper.SetDefault("report.verification_section", true)
}

// bindEnvironmentVariables maps well-known environment variables onto
// viper keys, first match wins
func bindEnvironmentVariables() {
	bindEnvKeys("analytics.property_id", []string{
		"GA4_PROPERTY_ID",
		"ANALYTICS_PROPERTY_ID",
	})

	bindEnvKeys("analytics.credentials_file", []string{
		"GA4_CREDENTIALS_FILE",
		"GOOGLE_APPLICATION_CREDENTIALS",
	})

	bindEnvKeys("search.site_url", []string{
		"GSC_SITE_URL",
		"SEARCH_CONSOLE_SITE_URL",
	})

	bindEnvKeys("search.credentials_file", []string{
		"GSC_CREDENTIALS_FILE",
		"GOOGLE_APPLICATION_CREDENTIALS",
	})

	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
	})

	bindEnvKeys("notion.token", []string{
		"NOTION_TOKEN",
		"NOTION_API_KEY",
	})

	bindEnvKeys("notion.parent_page_id", []string{
		"NOTION_PARENT_PAGE_ID",
		"NOTION_PAGE_ID",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"SITEWATCH_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	if config.Analytics.PropertyID == "" {
		errors = append(errors, "GA4 property ID is required. Set GA4_PROPERTY_ID or analytics.property_id in config file")
	}
	if config.Analytics.CredentialsFile == "" {
		errors = append(errors, "GA4 credentials file is required. Set GA4_CREDENTIALS_FILE or analytics.credentials_file in config file")
	}
	if config.Search.SiteURL == "" {
		errors = append(errors, "Search Console site URL is required. Set GSC_SITE_URL or search.site_url in config file")
	}
	if config.AI.Gemini.APIKey == "" {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://makersuite.google.com/app/apikey")
	}
	if config.Notion.Token == "" {
		errors = append(errors, "Notion integration token is required. Set NOTION_TOKEN or notion.token in config file")
	}
	if config.Notion.ParentPageID == "" {
		errors = append(errors, "Notion parent page ID is required. Set NOTION_PARENT_PAGE_ID or notion.parent_page_id in config file")
	}

	if config.Report.WindowDays < 1 {
		errors = append(errors, fmt.Sprintf("report.window_days must be at least 1, got %d", config.Report.WindowDays))
	}
	if config.Report.OppMaxCTR <= 0 || config.Report.OppMaxCTR >= 1 {
		errors = append(errors, fmt.Sprintf("report.opp_max_ctr must be a fraction between 0 and 1, got %v", config.Report.OppMaxCTR))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetApp() App             { return Get().App }
func GetAnalytics() Analytics { return Get().Analytics }
func GetSearch() Search       { return Get().Search }
func GetAI() AI               { return Get().AI }
func GetNotion() Notion       { return Get().Notion }
func GetReport() Report       { return Get().Report }

func GetGeminiAPIKey() string { return Get().AI.Gemini.APIKey }
func GetGeminiModel() string  { return Get().AI.Gemini.Model }
