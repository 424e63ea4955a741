package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type addAccountRequest struct {
	Name              string `json:"name"`
	LibraryAdapter    string `json:"library_adapter"`
	NewspaperAdapter  string `json:"newspaper_adapter"`
	LibraryURL        string `json:"library_url"`
	LibraryUsername   string `json:"library_username"`
	LibraryPassword   string `json:"library_password"`
	NewspaperUsername string `json:"newspaper_username"`
	NewspaperPassword string `json:"newspaper_password"`
}

var addReq addAccountRequest

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an account; its first renewal runs on the next scan.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var created struct {
			ID int64 `json:"id"`
		}
		res, err := client().R().
			SetContext(cmd.Context()).
			SetBody(addReq).
			SetResult(&created).
			Post("/api/accounts")
		if err != nil || res.IsError() {
			return fail(res, err)
		}
		fmt.Printf("created account %d\n", created.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addReq.Name, "name", "", "Friendly account name.")
	addCmd.Flags().StringVar(&addReq.LibraryAdapter, "library", "", "Library adapter (e.g. oclc).")
	addCmd.Flags().StringVar(&addReq.NewspaperAdapter, "newspaper", "", "Newspaper adapter (e.g. nyt).")
	addCmd.Flags().StringVar(&addReq.LibraryURL, "url", "", "Library portal url or direct redemption link.")
	addCmd.Flags().StringVar(&addReq.LibraryUsername, "card", "", "Library card number.")
	addCmd.Flags().StringVar(&addReq.LibraryPassword, "pin", "", "Library PIN.")
	addCmd.Flags().StringVar(&addReq.NewspaperUsername, "user", "", "Newspaper account email/username.")
	addCmd.Flags().StringVar(&addReq.NewspaperPassword, "pass", "", "Newspaper account password.")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("library")
	addCmd.MarkFlagRequired("newspaper")
	rootCmd.AddCommand(addCmd)
}
