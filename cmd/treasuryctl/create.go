package main

import (
	"github.com/spf13/cobra"

	"github.com/relicware/treasury/pkg/treasury"
)

func newCreateCmd() *cobra.Command {
	var importersDir string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Initialize a new treasury and scan an importer directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := treasury.New(rootFlag, false)
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

			cmd.Printf("treasury created at %s\n", t.Root())
			return nil
		},
	}

	cmd.Flags().StringVar(&importersDir, "importers-dir", "", "directory of importer plugins (*.so) to scan")
	return cmd
}
