package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/core/schedule"
)

var driversJSON bool

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List volunteers with their parsed weekly availability",
	RunE:  runDrivers,
}

func init() {
	driversCmd.Flags().BoolVar(&driversJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(driversCmd)
}

// driverRow is the listing entry for one volunteer.
type driverRow struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Roles           []string                 `json:"roles"`
	Status          string                   `json:"status"`
	MaxRidesPerWeek int                      `json:"max_rides_per_week"`
	Slots           []model.AvailabilitySlot `json:"slots"`
	Unavailability  int                      `json:"unavailability_entries"`
	SkippedEntries  int                      `json:"skipped_entries"`
}

func runDrivers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := repository.NewStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() { _ = st.Close() }()

	vols, err := st.GetAllVolunteers(context.Background())
	if err != nil {
		return err
	}
	rows := make([]driverRow, 0, len(vols))
	zone := cfg.Matching.ScheduleZone()
	for _, v := range vols {
		slots, slotStats := schedule.ParseAvailability(v.Availability)
		ix, ixStats := schedule.BuildIndex(v.Unavailability, zone)
		rows = append(rows, driverRow{
			ID:              v.PrimaryID(),
			Name:            v.Name(),
			Roles:           v.Roles,
			Status:          v.Status,
			MaxRidesPerWeek: v.MaxRidesPerWeek,
			Slots:           slots,
			Unavailability:  ix.Len(),
			SkippedEntries:  slotStats.Skipped + ixStats.Skipped + v.SkippedUnavailability,
		})
	}

	if driversJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLES\tSTATUS\tMAX/WEEK\tAVAILABILITY\tUNAVAILABLE\tSKIPPED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%d\t%d\n",
			r.ID, r.Name, strings.Join(r.Roles, ","), r.Status, r.MaxRidesPerWeek,
			formatSlots(r.Slots), r.Unavailability, r.SkippedEntries)
	}
	return w.Flush()
}

func formatSlots(slots []model.AvailabilitySlot) string {
	if len(slots) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(slots))
	for _, s := range slots {
		parts = append(parts, fmt.Sprintf("%s %02d:%02d-%02d:%02d",
			s.Weekday.String()[:3], s.StartMinutes/60, s.StartMinutes%60, s.EndMinutes/60, s.EndMinutes%60))
	}
	return strings.Join(parts, " ")
}
