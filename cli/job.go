package cli

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/chimbuka/mabuku/internal/queue"
	"github.com/chimbuka/mabuku/internal/server"
	"github.com/chimbuka/mabuku/jobs"
	"github.com/chimbuka/mabuku/pkg/audit"
	"github.com/chimbuka/mabuku/pkg/log"
	"github.com/chimbuka/mabuku/plugins/notifiers"
)

func JobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "job",
		Aliases: []string{"jobs"},
		Short:   "Manage jobs",
		Example: heredoc.Doc(`
			$ mabuku job run low_stock_alert
		`),
	}

	cmd.AddCommand(
		runJobCmd(),
	)

	cmd.PersistentFlags().StringP("config", "c", "./config.yaml", "Config file path")
	cmd.MarkPersistentFlagFilename("config")

	return cmd
}

func runJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fire a specific job",
		Example: heredoc.Doc(`
			$ mabuku job run low_stock_alert
			$ mabuku job run pending_approvals_reminder
			$ mabuku job run auto_categorize
			$ mabuku job run suggestion_cleanup
		`),
		Args: cobra.ExactValidArgs(1),
		ValidArgs: []string{
			string(jobs.LowStockAlert),
			string(jobs.PendingApprovalsReminder),
			string(jobs.AutoCategorize),
			string(jobs.SuggestionCleanup),
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("getting config flag value: %w", err)
			}
			config, err := server.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			logger := log.NewCtxLogger(config.LogLevel, []string{
				audit.ContextKeyOrganizationID,
				audit.ContextKeyActorID,
			})
			notifier, err := notifiers.NewClient(&config.Notifier, logger)
			if err != nil {
				return err
			}

			services, err := server.InitServices(server.ServiceDeps{
				Config:    &config,
				Logger:    logger,
				Validator: validator.New(),
				Notifier:  notifier,
				Queue:     queue.NewClient(config.Queue),
			})
			if err != nil {
				return fmt.Errorf("initializing services: %w", err)
			}

			handler := jobs.NewHandler(
				logger,
				services.InventoryService,
				services.ApprovalService,
				services.CategorizationService,
				services.UserService,
				notifier,
			)

			jobsMap := map[jobs.Type]func(context.Context, jobs.Config) error{
				jobs.LowStockAlert:            handler.LowStockAlert,
				jobs.PendingApprovalsReminder: handler.PendingApprovalsReminder,
				jobs.AutoCategorize:           handler.AutoCategorize,
				jobs.SuggestionCleanup:        handler.SuggestionCleanup,
			}

			jobName := jobs.Type(args[0])
			job := jobsMap[jobName]
			if job == nil {
				return fmt.Errorf("invalid job name: %s", jobName)
			}
			jobConfig := config.Jobs[jobName].Config
			if err := job(context.Background(), jobConfig); err != nil {
				return fmt.Errorf(`failed to run job "%s": %w`, jobName, err)
			}

			return nil
		},
	}

	return cmd
}
