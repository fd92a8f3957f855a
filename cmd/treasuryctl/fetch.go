package main

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/relicware/treasury/pkg/id"
	"github.com/relicware/treasury/pkg/treasury"
)

func newFetchCmd() *cobra.Command {
	var binary bool

	cmd := &cobra.Command{
		Use:   "fetch UUID",
		Short: "Fetch an asset's native bytes, re-importing if the source has changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := id.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse asset id %q: %w", args[0], err)
			}

			t, err := treasury.Open(rootFlag)
			if err != nil {
				return err
			}
			defer t.Close()

			registerBuiltinImporters(t)

			data, err := t.Fetch(context.Background(), assetID)
			if err != nil {
				return err
			}

			return writeFetchOutput(cmd, data, binary)
		},
	}

	cmd.Flags().BoolVarP(&binary, "binary", "b", false, "write raw bytes to stdout for payloads that aren't small valid UTF-8 text")
	return cmd
}

// writeFetchOutput prints UTF-8 for small valid-text payloads. Anything else
// needs -b/--binary to confirm the caller wants raw bytes on its stdout;
// without it, a large or non-UTF-8 payload is refused rather than dumped.
func writeFetchOutput(cmd *cobra.Command, data []byte, binary bool) error {
	if len(data) <= 1024 && utf8.Valid(data) {
		cmd.Print(string(data))
		return nil
	}
	if !binary {
		return fmt.Errorf("asset is %d bytes of binary or non-UTF-8 data; pass -b/--binary to write it to stdout", len(data))
	}
	_, err := os.Stdout.Write(data)
	return err
}
