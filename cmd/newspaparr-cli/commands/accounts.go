package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type accountRow struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	LibraryAdapter    string `json:"library_adapter"`
	NewspaperAdapter  string `json:"newspaper_adapter"`
	Enabled           bool   `json:"enabled"`
	ExpiresAt         string `json:"expires_at"`
	NextRenewalLocal  string `json:"next_renewal_local"`
	SchedulePolicy    string `json:"schedule_policy"`
	EffectiveInterval string `json:"effective_interval"`
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List all accounts and their next renewal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var accounts []accountRow
		res, err := client().R().
			SetContext(cmd.Context()).
			SetResult(&accounts).
			Get("/api/accounts")
		if err != nil || res.IsError() {
			return fail(res, err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"id", "name", "adapter", "enabled", "next renewal", "policy"})
		for _, a := range accounts {
			t.AppendRow(table.Row{
				a.ID,
				a.Name,
				a.LibraryAdapter + "/" + a.NewspaperAdapter,
				a.Enabled,
				a.NextRenewalLocal,
				a.SchedulePolicy + " (" + a.EffectiveInterval + ")",
			})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}
