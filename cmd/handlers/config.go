package handlers

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long:  `Load and validate the configuration, then print the resolved values with secrets masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println("Configuration OK")
			fmt.Println()
			fmt.Printf("  Analytics property:   %s\n", cfg.Analytics.PropertyID)
			fmt.Printf("  Analytics credentials: %s\n", cfg.Analytics.CredentialsFile)
			fmt.Printf("  Search site:          %s\n", cfg.Search.SiteURL)
			fmt.Printf("  Gemini model:         %s\n", cfg.AI.Gemini.Model)
			fmt.Printf("  Gemini API key:       %s\n", mask(cfg.AI.Gemini.APIKey))
			fmt.Printf("  Notion token:         %s\n", mask(cfg.Notion.Token))
			fmt.Printf("  Notion parent page:   %s\n", cfg.Notion.ParentPageID)
			fmt.Printf("  Report window:        %d days\n", cfg.Report.WindowDays)
			fmt.Printf("  Data directory:       %s\n", cfg.App.DataDir)
			return nil
		},
	}
}

// mask hides all but the last four characters of a secret.
func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
