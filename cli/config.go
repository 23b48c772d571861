package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

const sampleConfig = `port: 8080
log_level: info

db:
  host: localhost
  port: "5432"
  user: postgres
  password: ""
  name: mabuku
  sslmode: disable

queue:
  host: localhost
  port: "6379"
  password: ""
  db: 0

auth:
  jwt_secret: change-me
  organization_header_key: X-Organization-ID

notifier:
  provider: log
  # provider: webhook
  # webhook:
  #   url: https://example.com/notifications
  #   timeout_seconds: 10
  #   retry_count: 3

# zra:
#   url: https://api.zra.org.zm
#   tpin: ""
#   auth:
#     type: api_key
#     in: header
#     key: X-API-Key
#     value: ""

jobs:
  low_stock_alert:
    enabled: true
    config:
      organization_ids: []
  pending_approvals_reminder:
    enabled: true
    config:
      organization_ids: []
  auto_categorize:
    enabled: false
    config:
      organization_ids: []
      batch_size: 100
  suggestion_cleanup:
    enabled: true
    config:
      retention_days: 30
`

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <command>",
		Short: "Manage client configurations",
		Example: heredoc.Doc(`
			$ mabuku config init
		`),
	}

	cmd.AddCommand(
		configInitCmd(),
	)

	return cmd
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a sample config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			const filename = "config.yaml"
			if _, err := os.Stat(filename); err == nil {
				return fmt.Errorf("%s already exists", filename)
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := os.WriteFile(filename, []byte(sampleConfig), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", filename, err)
			}

			fmt.Printf("config created: %s\n", filename)
			return nil
		},
	}
}
