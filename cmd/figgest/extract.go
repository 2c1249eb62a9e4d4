package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/figgest/internal/config"
	"github.com/dgallion1/figgest/internal/pipeline"
	"github.com/dgallion1/figgest/internal/question"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract figures and text from question pages",
	Long: `Extract reads one or more saved question pages and writes a question
record per page to questions.json (or questions.yaml) under the output
directory. Figure images are written to <out>/images.

A page that cannot be processed is written as an error record so the output
stays aligned with the inputs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(cmd, false)

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			v.Set("output_dir", out)
		}
		if format, _ := cmd.Flags().GetString("format"); format != "" {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q: use json or yaml", format)
			}
			v.Set("output_format", format)
		}
		if noSnap, _ := cmd.Flags().GetBool("no-snapshots"); noSnap {
			v.Set("snapshots", false)
		}
		cfg := config.Load(v)

		questionID, _ := cmd.Flags().GetString("question-id")
		if questionID != "" && len(args) > 1 {
			return fmt.Errorf("--question-id applies to a single file")
		}

		w := pipeline.NewWorker(pipeline.NewAssembler(cfg, log), nil, log)
		imagesDir := filepath.Join(cfg.OutputDir, "images")

		recs := make([]question.Record, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Warn("read failed", "file", path, "error", err)
				recs = append(recs, question.Failed(fileQuestionID(path), err))
				continue
			}
			recs = append(recs, w.ProcessOne(pipeline.Input{
				Name:       filepath.Base(path),
				QuestionID: questionID,
				Data:       data,
			}, imagesDir))
		}

		out, err := pipeline.WriteRecords(cfg.OutputDir, cfg.OutputFormat, recs)
		if err != nil {
			return err
		}
		printExtractSummary(os.Stdout, recs, out)
		return nil
	},
}

// fileQuestionID names an unreadable file's record after its base name.
func fileQuestionID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func init() {
	extractCmd.Flags().String("out", "", "output directory (default: output_dir setting)")
	extractCmd.Flags().String("format", "", "output format: json or yaml")
	extractCmd.Flags().String("question-id", "", "question id that overrides the one found in the page (single file only)")
	extractCmd.Flags().Bool("no-snapshots", false, "skip rendering figure snapshots")

	rootCmd.AddCommand(extractCmd)
}
