package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridematch/app"
	"github.com/kilianp07/ridematch/core/matching"
	"github.com/kilianp07/ridematch/infra/logger"
)

var matchCmd = &cobra.Command{
	Use:   "match <ride-id>",
	Short: "Match drivers for a ride and print the report",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("match-command").Errorf("service close: %v", err)
		}
	}()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	rep, err := svc.Engine.Match(ctx, args[0])
	if err != nil {
		if encErr := enc.Encode(matching.Failure(err)); encErr != nil {
			return encErr
		}
		return fmt.Errorf("match %s: %w", args[0], err)
	}
	return enc.Encode(rep)
}
