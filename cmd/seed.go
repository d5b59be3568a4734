package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localhive/localhive/internal/config"
	"github.com/localhive/localhive/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the database schema and insert the stock local types",
	RunE:  runSeed,
}

func runSeed(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	n, err := st.SeedLocalTypes(context.Background())
	if err != nil {
		return fmt.Errorf("seed local types: %w", err)
	}
	if n == 0 {
		fmt.Println("Local types already present, nothing to do.")
		return nil
	}
	fmt.Printf("Seeded %d local types into %s.\n", n, cfg.Store.Path)
	return nil
}
