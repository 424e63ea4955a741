package main

import (
	"context"

	"github.com/egyptiangio/newspaparr/cmd/newspaparr-cli/commands"
	"github.com/egyptiangio/newspaparr/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)
	commands.ExecuteContext(context.Background())
}
