package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/infra/store"
)

var seedFixture string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML or JSON fixture into the configured store",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFixture, "fixture", "f", "", "fixture file")
	_ = seedCmd.MarkFlagRequired("fixture")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fx, err := store.LoadFixture(seedFixture)
	if err != nil {
		return err
	}
	st, err := repository.NewStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() { _ = st.Close() }()
	n, err := fx.Seed(context.Background(), st)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents into %s store\n", n, cfg.Store.Type)
	return nil
}
