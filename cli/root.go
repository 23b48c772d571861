package cli

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mabuku <command> <subcommand> [flags]",
		Short: "Financial management backend for Zambian SMEs",
		Long: heredoc.Doc(`
			Multi-tenant backend covering expense approvals, transaction
			categorization, VAT invoicing with ZRA submission, and
			inventory tracking.`),
		Example: heredoc.Doc(`
			$ mabuku server migrate
			$ mabuku server start
			$ mabuku job run low_stock_alert
		`),
		SilenceUsage: true,
	}

	cmd.AddCommand(
		ServerCmd(),
		JobCmd(),
		ConfigCmd(),
	)

	return cmd
}
