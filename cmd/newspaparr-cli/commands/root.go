package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var serverUrl *string

var rootCmd = &cobra.Command{
	Use:   "newspaparr-cli",
	Short: "newspaparr-cli manages newspaper pass renewal accounts.",
}

func init() {
	serverUrl = rootCmd.PersistentFlags().String(
		"server", "http://localhost:8000", "The newspaparr server to talk to.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func client() *resty.Client {
	return resty.New().SetBaseURL(*serverUrl)
}

type errorResponse struct {
	Error string `json:"error"`
}

// fail prints the server's error body when there is one.
func fail(res *resty.Response, err error) error {
	if err != nil {
		return err
	}
	var body errorResponse
	if jsonErr := json.Unmarshal(res.Body(), &body); jsonErr == nil && body.Error != "" {
		return fmt.Errorf("%s: %s", res.Status(), body.Error)
	}
	return fmt.Errorf("%s", res.Status())
}
