package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridematch/app"
	"github.com/kilianp07/ridematch/core/matchlog"
	"github.com/kilianp07/ridematch/pkg/export"
)

var (
	logsRide   string
	logsDriver string
	logsSince  time.Duration
	logsFormat string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Query the match log",
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsRide, "ride", "", "only matches for this ride id")
	logsCmd.Flags().StringVar(&logsDriver, "driver", "", "only matches that evaluated this driver")
	logsCmd.Flags().DurationVar(&logsSince, "since", 0, "only matches newer than this duration")
	logsCmd.Flags().StringVar(&logsFormat, "format", "json", "output format: json or csv")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := app.NewMatchLog(cfg.MatchLog)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("match log is disabled")
	}
	defer func() { _ = st.Close() }()

	q := matchlog.Query{RideID: logsRide, DriverID: logsDriver}
	if logsSince > 0 {
		q.Start = time.Now().Add(-logsSince)
	}
	recs, err := st.Query(context.Background(), q)
	if err != nil {
		return err
	}
	switch logsFormat {
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), recs)
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), recs)
	default:
		return fmt.Errorf("unknown format %s", logsFormat)
	}
}
