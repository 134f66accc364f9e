// automate authors patterns, ships them as toolkits and scaffolds code from drafts.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/n1rna/automate/internal/command"
	"github.com/n1rna/automate/internal/logger"
	"github.com/n1rna/automate/internal/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := command.NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	_ = logger.GetLogger().Sync()
	if err != nil {
		output.NewPrinterWithWriter(os.Stderr, output.FormatTable, false).Error(err.Error())
		stop()
		os.Exit(1)
	}
}
