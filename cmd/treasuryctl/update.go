package main

import (
	"github.com/spf13/cobra"

	"github.com/relicware/treasury/pkg/treasury"
)

func newUpdateCmd() *cobra.Command {
	var importersDir string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Open an existing treasury and re-scan an importer directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := treasury.Open(rootFlag)
			if err != nil {
				return err
			}
			defer t.Close()

			registerBuiltinImporters(t)

			if importersDir != "" {
				n, err := t.LoadImporters(importersDir)
				if err != nil {
					return err
				}
				cmd.Printf("loaded %d importer(s) from %s\n", n, importersDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&importersDir, "importers-dir", "", "directory of importer plugins (*.so) to scan")
	return cmd
}
