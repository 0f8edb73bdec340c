package main

import (
	"context"
	"os"

	"github.com/miportal/portal/cmd/cli"
	"github.com/miportal/portal/internal/common"
)

func main() {
	ctx, cleanup := common.WithInterrupt(context.Background())
	defer cleanup()

	if err := cli.GetCommandOptions().ExecuteContext(ctx); err != nil {
		cleanup()
		os.Exit(1)
	}
}
