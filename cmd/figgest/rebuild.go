package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/figgest/internal/pipeline"
	"github.com/dgallion1/figgest/internal/rebuild"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <questions file>",
	Short: "Reconstruct question text from extracted records",
	Long: `Rebuild replaces every {{FIG_n}} placeholder in an extracted questions
file with its figure: the figure text in text mode, an image reference in
markdown and html modes, or the image itself in a docx document.

The result is written next to the input as questions_<mode>.json, or
questions.docx for docx mode.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := rebuild.ParseMode(modeFlag)
		if err != nil {
			return err
		}

		recs, err := pipeline.ReadRecords(args[0])
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("out")
		if dir == "" {
			dir = filepath.Dir(args[0])
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		if mode == rebuild.ModeDocx {
			path := filepath.Join(dir, "questions.docx")
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create docx: %w", err)
			}
			defer f.Close()
			trust, _ := cmd.Flags().GetBool("trust-image-paths")
			opts := rebuild.DocxOptions{BaseDir: filepath.Dir(args[0]), TrustPaths: trust}
			if err := rebuild.WriteDocx(f, recs, opts); err != nil {
				return err
			}
			printRebuildSummary(os.Stdout, mode, rebuild.All(recs, rebuild.ModeText), path)
			return nil
		}

		qs := rebuild.All(recs, mode)
		data, err := json.MarshalIndent(qs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal questions: %w", err)
		}
		path := filepath.Join(dir, fmt.Sprintf("questions_%s.json", mode))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write questions: %w", err)
		}
		printRebuildSummary(os.Stdout, mode, qs, path)
		return nil
	},
}

func init() {
	rebuildCmd.Flags().String("mode", "text", "rebuild mode: text, markdown, html or docx")
	rebuildCmd.Flags().String("out", "", "output directory (default: input file's directory)")
	rebuildCmd.Flags().Bool("trust-image-paths", false, "docx: read figure images from any path, not just under the input file's directory")

	rootCmd.AddCommand(rebuildCmd)
}
