// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/protein-annotator/internal/annotate"
	"github.com/pdiddy/protein-annotator/internal/secrets"
	"github.com/pdiddy/protein-annotator/internal/sources"
	"github.com/pdiddy/protein-annotator/internal/table"
	"github.com/pdiddy/protein-annotator/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "protein-annotator/0.1"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Annotate the accessions of an input table",
	Long: `Annotate reads the uniprot_ac column of the input CSV and, for every
accession without a row in the output CSV, queries UniProt, PDBe, AlphaFold,
ChEMBL and PANTHER and appends one row. The output table is created with
its header when absent and saved after each accession.

A source that fails or does not know the accession leaves its columns
empty; the row is still written.`,
	Args:    cobra.NoArgs,
	PreRunE: bindAnnotateFlags,
	RunE:    runAnnotate,
}

// annotateFlagKeys maps viper keys to the annotate flags that set them.
var annotateFlagKeys = map[string]string{
	"workers":     "workers",
	"max_retries": "max-retries",
	"timeout":     "timeout",
	"taxon_id":    "taxon",
	"append_only": "append-only",
}

func init() {
	f := annotateCmd.Flags()
	f.StringP("input_file", "i", "", "input CSV with a uniprot_ac column")
	f.StringP("output_file", "o", "", "output CSV with the annotations (created if absent)")
	f.Int("workers", 1, "accessions fetched concurrently; 1 keeps input order")
	f.Int("max-retries", 0, "retries on HTTP 429/5xx responses (0 disables)")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.Int("taxon", types.DefaultTaxonID, "NCBI taxon ID for PANTHER lookups")
	f.Bool("append-only", false, "append rows instead of rewriting the table after each accession")
	f.Bool("no-progress", false, "print one line per accession instead of a progress bar")

	annotateCmd.MarkFlagRequired("input_file")
	annotateCmd.MarkFlagRequired("output_file")

	rootCmd.AddCommand(annotateCmd)
}

func bindAnnotateFlags(cmd *cobra.Command, args []string) error {
	return bindFlags(cmd, annotateFlagKeys)
}

// bindFlags binds the flags of cmd to their viper keys, so an explicit flag
// overrides the config file and the environment.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg := annotationConfig(cmd)

	ids, err := table.ReadIdentifiers(cfg.InputFile)
	if err != nil {
		return err
	}
	tbl, err := table.Open(cfg.OutputFile, cfg.AppendOnly)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.Sources.Timeout}
	annotator := annotate.New(sources.New(cfg.Sources, client), tbl, os.Stderr)

	var progress annotate.Progress
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); noProgress {
		progress = annotate.NewLineProgress(os.Stdout)
	} else {
		progress = newBarProgress(os.Stdout)
	}

	batch := &annotate.Batch{
		Annotator: annotator,
		Workers:   cfg.Workers,
		Progress:  progress,
		Out:       os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stdout, "Annotating %d accessions into %s (%d already recorded)\n",
		len(ids), tbl.Path(), tbl.Len())

	if _, err := batch.Run(ctx, ids); err != nil {
		return fmt.Errorf("batch stopped, rerun to resume: %w", err)
	}
	return nil
}

// annotationConfig assembles the annotate settings from flags, the config
// file, the environment and .secrets/.
func annotationConfig(cmd *cobra.Command) types.AnnotationConfig {
	input, _ := cmd.Flags().GetString("input_file")
	output, _ := cmd.Flags().GetString("output_file")

	timeout := viper.GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	userAgent := viper.GetString("user_agent")
	if userAgent == "" {
		userAgent = secrets.UserAgent(defaultUserAgent, loadedSecrets)
	}

	return types.AnnotationConfig{
		Sources: types.SourcesConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    timeout,
				UserAgent:  userAgent,
				MaxRetries: viper.GetInt("max_retries"),
			},
			UniProtBase:    viper.GetString("uniprot_base"),
			PDBeBase:       viper.GetString("pdbe_base"),
			AlphaFoldBase:  viper.GetString("alphafold_base"),
			ChEMBLBase:     viper.GetString("chembl_base"),
			PantherBase:    viper.GetString("panther_base"),
			TaxonID:        viper.GetInt("taxon_id"),
			ChEMBLPageSize: viper.GetInt("chembl_page_size"),
		}.WithDefaults(),
		InputFile:  input,
		OutputFile: output,
		Workers:    viper.GetInt("workers"),
		AppendOnly: viper.GetBool("append_only"),
	}
}
