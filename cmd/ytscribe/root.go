package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)
	runCmd := newRunCommand(ctx)

	rootCmd := &cobra.Command{
		Use:           "ytscribe [channel-or-video-url]",
		Short:         "Download YouTube transcripts for a video or a whole channel",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			runCmd.SetContext(cmd.Context())
			return runCmd.RunE(runCmd, args)
		},
	}
	rootCmd.Long = `ytscribe downloads transcripts for a YouTube video or every video of a
channel, falling back to audio download and speech recognition when a video
publishes no captions. Progress is persisted, so interrupted runs resume
where they stopped.`

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().AddFlagSet(runCmd.Flags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newSplitCommand())
	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))

	return rootCmd
}
