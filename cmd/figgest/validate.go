package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/figgest/internal/pipeline"
	"github.com/dgallion1/figgest/internal/question"
)

var validateCmd = &cobra.Command{
	Use:   "validate <questions file>",
	Short: "Check placeholder and figure bookkeeping in extracted records",
	Long: `Validate reads an extracted questions file and reports every record whose
placeholders and figures disagree: dangling or repeated placeholders,
unreferenced figures, and gaps in the figure numbering.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := pipeline.ReadRecords(args[0])
		if err != nil {
			return err
		}

		var bad, failed int
		for _, rec := range recs {
			if rec.Error != "" {
				failed++
				continue
			}
			problems := question.Validate(rec)
			if len(problems) == 0 {
				continue
			}
			bad++
			fmt.Println(titleStyle.Render(rec.QuestionID))
			for _, p := range problems {
				fmt.Printf("  %s %s\n", errorStyle.Render("x"), p)
			}
		}

		summary := fmt.Sprintf("%s %d  %s %d  %s %d",
			dimStyle.Render("Records:"), len(recs),
			dimStyle.Render("Errored:"), failed,
			dimStyle.Render("Inconsistent:"), bad)
		fmt.Fprintln(os.Stdout, boxStyle.Render(summary))
		if bad > 0 {
			return fmt.Errorf("%d inconsistent records", bad)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
