package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON prints v as two-space indented JSON on stdout, leaving stderr for logs.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
