// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/protein-annotator/internal/table"
	"github.com/pdiddy/protein-annotator/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the annotation table as YAML, JSON or XLSX",
	Long: `Export reads an output table written by annotate and writes its rows in
another format. Empty cells are exported as nulls (YAML, JSON) or empty
cells (XLSX).

When --dest is omitted the table path is reused with the format's extension.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("output_file", "o", "", "annotation table to export")
	exportCmd.Flags().String("format", string(types.ExportYAML), "export format: yaml, json or xlsx")
	exportCmd.Flags().String("dest", "", "destination file (default: table path with the format extension)")
	exportCmd.MarkFlagRequired("output_file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	src, _ := cmd.Flags().GetString("output_file")
	format, _ := cmd.Flags().GetString("format")
	dest, _ := cmd.Flags().GetString("dest")

	format = strings.ToLower(format)
	if dest == "" {
		dest = exportPath(src, format)
	}

	n, err := table.Export(src, dest, types.ExportFormat(format))
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported %d rows to %s\n", n, dest)
	return nil
}

// exportPath swaps the extension of the table path for format.
func exportPath(src, format string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + "." + format
}
