package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/render"
)

func newSplitCommand() *cobra.Command {
	var (
		outputDir string
		maxChars  int
		maxSizeMB int
	)

	cmd := &cobra.Command{
		Use:         "split <file>",
		Short:       "Split a merged transcript document into size-capped parts",
		Long:        "Split a large transcript document into numbered parts, cutting on section boundaries so no video's transcript is torn across files.",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			splitter := render.NewSplitter(maxChars, maxSizeMB<<20)
			paths, err := splitter.SplitFile(args[0], outputDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d part(s):\n", len(paths))
			for _, path := range paths {
				fmt.Fprintf(out, "  %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the parts (default: alongside the input)")
	cmd.Flags().IntVar(&maxChars, "max-chars", render.DefaultSplitChars, "Maximum characters per part")
	cmd.Flags().IntVar(&maxSizeMB, "max-size-mb", 200, "Maximum size per part in MB")
	return cmd
}
