package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renewCmd = &cobra.Command{
	Use:   "renew <account id>",
	Short: "Trigger a renewal for an account right now.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := client().R().
			SetContext(cmd.Context()).
			Post(fmt.Sprintf("/api/accounts/%s/renew", args[0]))
		if err != nil || res.IsError() {
			return fail(res, err)
		}
		fmt.Println("renewal started, watch history for the verdict")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renewCmd)
}
