package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type attemptRow struct {
	ID             string `json:"id"`
	StartedAt      string `json:"started_at"`
	FinishedAt     string `json:"finished_at"`
	Verdict        string `json:"verdict"`
	Reason         string `json:"reason"`
	Message        string `json:"message"`
	ExpiresAt      string `json:"expires_at"`
	NextRenewalAt  string `json:"next_renewal_at"`
	SchedulePolicy string `json:"schedule_policy"`
}

var historyLimit *int64

var historyCmd = &cobra.Command{
	Use:   "history <account id>",
	Short: "Show the attempt history for an account.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var attempts []attemptRow
		res, err := client().R().
			SetContext(cmd.Context()).
			SetQueryParam("limit", fmt.Sprint(*historyLimit)).
			SetResult(&attempts).
			Get(fmt.Sprintf("/api/accounts/%s/history", args[0]))
		if err != nil || res.IsError() {
			return fail(res, err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"started", "verdict", "reason", "expires", "next renewal", "policy"})
		for _, a := range attempts {
			t.AppendRow(table.Row{
				a.StartedAt, a.Verdict, a.Reason, a.ExpiresAt, a.NextRenewalAt, a.SchedulePolicy,
			})
		}
		t.Render()
		return nil
	},
}

func init() {
	historyLimit = historyCmd.Flags().Int64("limit", 20, "How many attempts to show.")
	rootCmd.AddCommand(historyCmd)
}
