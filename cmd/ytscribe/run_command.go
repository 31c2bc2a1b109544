package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ytscribe/internal/cookies"
	"ytscribe/internal/deps"
	"ytscribe/internal/language"
	"ytscribe/internal/queue"
	"ytscribe/internal/render"
	"ytscribe/internal/services"
	"ytscribe/internal/services/captions"
	"ytscribe/internal/services/whisper"
	"ytscribe/internal/services/ytdlp"
	"ytscribe/internal/speech"
	"ytscribe/internal/workflow"
)

type runFlags struct {
	audio              bool
	cookiesPath        string
	cookiesFromBrowser string
	outputFormat       string
	outputFile         string
	outputDir          string
	languages          []string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <channel-or-video-url>",
		Short: "Download transcripts for a channel or a single video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, flags, args[0])
		},
	}

	cmd.Flags().BoolVar(&flags.audio, "audio", false, "Download audio and run speech recognition when captions are missing")
	cmd.Flags().StringVar(&flags.cookiesPath, "cookies", "", "Path to a Netscape cookie file")
	cmd.Flags().StringVar(&flags.cookiesFromBrowser, "cookies-from-browser", "", "Extract cookies from a browser (chrome, firefox, edge, safari, opera)")
	cmd.Flags().StringVar(&flags.outputFormat, "output-format", "", "Output format: markdown or html")
	cmd.Flags().StringVar(&flags.outputFile, "output-file", "", "Merged channel document filename")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Override the configured output directory")
	cmd.Flags().StringArrayVar(&flags.languages, "language", nil, "Preferred transcript language (repeatable)")

	return cmd
}

func runPipeline(cmd *cobra.Command, cmdCtx *commandContext, flags *runFlags, url string) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return err
	}

	target, err := ytdlp.ParseTarget(url)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "parse target", url, err)
	}

	formatValue := flags.outputFormat
	if formatValue == "" {
		formatValue = cfg.Output.Format
	}
	format, err := render.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	statuses := deps.CheckBinaries(deps.Default(cfg))
	if missing := deps.MissingRequired(statuses, flags.audio); len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "cli", "check tools",
			fmt.Sprintf("missing required tools: %v (see `ytscribe deps`)", missing), nil)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ytdlpClient := ytdlp.NewClient(ytdlp.WithBinary(cfg.Tools.YtDlp))

	cookieFile, cookieCleanup, err := cookies.Resolve(ctx, cookies.Options{
		FilePath: flags.cookiesPath,
		Browser:  flags.cookiesFromBrowser,
		WorkDir:  cfg.Paths.WorkDir,
	}, ytdlpClient)
	if err != nil {
		return err
	}
	defer cookieCleanup()

	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	fetcher := captions.NewClient(
		time.Duration(cfg.Transcripts.RequestTimeout)*time.Second,
		captions.WithUserAgent(cfg.Transcripts.UserAgent),
	)

	var fallback workflow.Fallback
	if flags.audio {
		recognizer := whisper.NewService(
			whisper.Config{Model: cfg.Tools.WhisperModel},
			cfg.Tools.FFmpeg,
			cfg.Tools.Uvx,
		)
		fallback = speech.NewPipeline(ytdlpClient, recognizer, cfg.Paths.WorkDir, logger)
	}

	runner, err := workflow.NewRunner(cfg, store, ytdlpClient, fetcher, fallback, logger)
	if err != nil {
		return err
	}

	languages := language.NormalizeList(flags.languages)
	if len(languages) == 0 {
		languages = language.NormalizeList(cfg.Transcripts.Languages)
	}

	summary, err := runner.Run(ctx, workflow.Options{
		Target:        target,
		CookieFile:    cookieFile,
		AudioFallback: flags.audio,
		Format:        format,
		Languages:     languages,
		OutputDir:     flags.outputDir,
		MergedFile:    flags.outputFile,
		MergeChannel:  cfg.Output.MergeChannel,
	})
	if err != nil {
		return err
	}

	printSummary(cmd, summary)
	if summary.Failed() {
		return fmt.Errorf("%d of %d videos failed", len(summary.Failures), summary.Processed())
	}
	return nil
}

func printSummary(cmd *cobra.Command, summary workflow.RunSummary) {
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"Completed", strconv.Itoa(summary.Completed)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Failed", strconv.Itoa(len(summary.Failures))},
		{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
	}
	fmt.Fprintln(out, renderTable([]string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	if summary.MergedPath != "" {
		fmt.Fprintf(out, "Merged document: %s\n", summary.MergedPath)
	}
	for _, failure := range summary.Failures {
		fmt.Fprintf(out, "failed %s (%s): %s\n", failure.VideoID, failure.Title, failure.Reason)
	}
}
