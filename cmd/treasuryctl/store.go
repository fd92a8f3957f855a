package main

import (
	"github.com/spf13/cobra"

	"github.com/relicware/treasury/pkg/treasury"
)

func newStoreCmd() *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "store SOURCE IMPORTER",
		Short: "Register a source with an importer, printing its asset id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := treasury.Open(rootFlag)
			if err != nil {
				return err
			}
			defer t.Close()

			registerBuiltinImporters(t)

			assetID, err := t.Store(args[0], args[1], tags)
			if err != nil {
				return err
			}
			cmd.Println(assetID.String())
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "free-form tag, repeatable")
	return cmd
}
