package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sheetwise-org/sheetwise/engine"
	"github.com/sheetwise-org/sheetwise/loader"
	"github.com/sheetwise-org/sheetwise/plan"
	"github.com/sheetwise-org/sheetwise/resolve"
	"github.com/sheetwise-org/sheetwise/sample"
	"github.com/sheetwise-org/sheetwise/writer"
)

// ============================================================================
// SHEETWISE CLI — deterministic action-plan execution over tabular data
// ============================================================================

const version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:     "sheetwise",
		Short:   "Execute structured action plans against spreadsheet data",
		Version: version,
	}
	root.AddCommand(runCmd(), sampleCmd(), inspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads optional tuning (keyword lists, colors) from a config
// file or SHEETWISE_* environment variables.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("sheetwise")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return v, nil
}

// executorOptions maps config keys onto engine options.
func executorOptions(v *viper.Viper) []engine.Option {
	var opts []engine.Option
	if kws := v.GetStringSlice("cleaning-keywords"); len(kws) > 0 {
		opts = append(opts, engine.WithCleaningKeywords(kws...))
	}
	if verbs := v.GetStringSlice("highlight-verbs"); len(verbs) > 0 {
		opts = append(opts, engine.WithHighlightVerbs(verbs...))
	}
	if colors := v.GetStringMapString("color-words"); len(colors) > 0 {
		opts = append(opts, engine.WithColorWords(colors))
	}
	return opts
}

// ============================================================================
// RUN — execute a plan and write the result
// ============================================================================

func runCmd() *cobra.Command {
	var (
		filePath   string
		planPath   string
		sheet      string
		outPath    string
		configPath string
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute an action plan against a data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			ds, err := loader.Load(filePath, loader.Options{Sheet: sheet})
			if err != nil {
				return err
			}

			planData, err := os.ReadFile(planPath)
			if err != nil {
				return fmt.Errorf("failed to read plan %s: %w", planPath, err)
			}
			p, err := plan.Parse(string(planData))
			if err != nil {
				return err
			}

			e := engine.New(executorOptions(v)...)
			result, err := e.Run(ds, p)
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := writeOutput(e, outPath); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), result, pretty)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "path to the source data file (required)")
	cmd.Flags().StringVar(&planPath, "plan", "", "path to the action-plan JSON (required)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the final dataset to this .csv or .xlsx file")
	cmd.Flags().StringVar(&configPath, "config", "", "optional config file for keyword tuning")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print the result bundle")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("plan")
	return cmd
}

// writeOutput persists the executor's final dataset, applying formatting
// rules for XLSX. Plans that group or otherwise rebuild the table leave the
// loaded dataset behind, so only e.Dataset() reflects what the plan produced.
func writeOutput(e *engine.Executor, path string) error {
	ds := e.Dataset()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		return writer.WriteCSV(ds, f)
	case ".xlsx":
		return writer.Save(ds, e.Formats(), path)
	default:
		return fmt.Errorf("unsupported output extension %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// ============================================================================
// SAMPLE — diverse subset for the external planner
// ============================================================================

func sampleCmd() *cobra.Command {
	var (
		filePath string
		sheet    string
		maxRows  int
		seed     int64
		pretty   bool
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Build a diverse row sample for planner context",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loader.Load(filePath, loader.Options{Sheet: sheet})
			if err != nil {
				return err
			}
			res := sample.Select(ds, sample.Options{MaxRows: maxRows, Seed: seed})
			out := struct {
				Columns     []string                 `json:"columns"`
				Rows        []map[string]interface{} `json:"rows"`
				Indices     []int                    `json:"indices"`
				Explanation string                   `json:"explanation"`
			}{
				Columns:     res.Sample.Columns(),
				Rows:        res.Sample.Records(),
				Indices:     res.Indices,
				Explanation: res.Explanation,
			}
			return printJSON(cmd.OutOrStdout(), out, pretty)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "path to the source data file (required)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	cmd.Flags().IntVar(&maxRows, "max-rows", sample.DefaultMaxRows, "sample row cap")
	cmd.Flags().Int64Var(&seed, "seed", 0, "sampling seed")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "pretty-print the sample")
	cmd.MarkFlagRequired("file")
	return cmd
}

// ============================================================================
// INSPECT — column overview
// ============================================================================

func inspectCmd() *cobra.Command {
	var (
		filePath string
		sheet    string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the columns and shape of a data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loader.Load(filePath, loader.Options{Sheet: sheet})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d rows × %d columns\n", ds.RowCount(), ds.ColumnCount())
			for i, c := range ds.Columns() {
				fmt.Fprintf(w, "  %s  %s\n", resolve.ColumnLetter(i), c)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "path to the source data file (required)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	cmd.MarkFlagRequired("file")
	return cmd
}

// ============================================================================
// OUTPUT HELPERS
// ============================================================================

func printJSON(w io.Writer, v interface{}, pretty bool) error {
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
