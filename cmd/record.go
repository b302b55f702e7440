package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lingomeet/lingomeet/pkg/meeting"
	"github.com/lingomeet/lingomeet/pkg/summary"
	"github.com/lingomeet/lingomeet/pkg/transcription"
	"github.com/lingomeet/lingomeet/pkg/translation"
)

// NewRecordCommand builds the record command. It reads transcript lines from
// stdin (typed or piped), timestamps them, translates them, summarizes the
// meeting, and saves it.
func NewRecordCommand(deps *CommandDeps) *cobra.Command {
	deps.defaults()

	var (
		title      string
		sourceFlag string
		targetFlag string
		noSummary  bool
	)

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record a meeting from line-based input",
		Long: `Record a meeting by reading transcript lines from standard input.
Each line becomes one final transcript entry, timestamped relative to the
start of the recording. On end of input the meeting is completed, its lines
translated to the target language, summarized, and saved.

Examples:
  lingomeet record --title "Standup"
  cat notes.txt | lingomeet record --title "Planning" --source en --target ko`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			source := deps.Config.SourceLanguage
			target := deps.Config.TargetLanguage
			var err error
			if sourceFlag != "" {
				if source, err = meeting.ParseLanguage(sourceFlag); err != nil {
					return err
				}
			}
			if targetFlag != "" {
				if target, err = meeting.ParseLanguage(targetFlag); err != nil {
					return err
				}
			}
			if title == "" {
				title = "Meeting " + time.Now().Format("2006-01-02 15:04")
			}

			m, err := meeting.New(uuid.NewString(), title, source, target, time.Now())
			if err != nil {
				return err
			}

			pipeline := translation.NewPipeline(deps.translator(), translation.PipelineOptions{
				Metrics: deps.pipelineMetrics(),
				Logger:  deps.Logger,
			})

			rec := transcription.NewReaderRecognizer(deps.In)
			mgr := transcription.NewManager(rec, transcription.Options{
				Saver:  deps.Repo,
				Logger: deps.Logger,
			})

			if _, err := mgr.StartRecording(m, source); err != nil {
				return fmt.Errorf("starting recording: %w", err)
			}

			// Wait for the input to drain.
			for mgr.Recording() {
				select {
				case <-cmd.Context().Done():
					// The command context is already cancelled; give the save
					// its own deadline.
					saveCtx, cancel := context.WithTimeout(context.Background(), deps.Config.Timeout)
					defer cancel()
					saved, err := mgr.SaveAndLeave(saveCtx)
					if err != nil {
						return fmt.Errorf("interrupted, save failed: %w", err)
					}
					fmt.Fprintf(deps.Out, "Interrupted. Saved meeting %s (resumable).\n", saved.ID())
					return nil
				case <-time.After(10 * time.Millisecond):
				}
			}

			done, err := mgr.StopRecording(cmd.Context())
			if err != nil {
				return fmt.Errorf("finishing recording: %w", err)
			}

			transcripts := done.Transcripts()
			pipeline.TranslateBatch(cmd.Context(), transcripts, target)

			if !noSummary && len(transcripts) > 0 {
				s, err := deps.summarizer()
				if err != nil {
					return err
				}
				sum, err := summary.NewGenerator(s).Generate(cmd.Context(), done, target)
				if err != nil {
					return fmt.Errorf("generating summary: %w", err)
				}
				done = done.SetSummary(sum, time.Now())
				if err := deps.Repo.Save(cmd.Context(), done); err != nil {
					return fmt.Errorf("saving summary: %w", err)
				}
			}

			fmt.Fprintf(deps.Out, "Saved meeting %s (%d lines", done.ID(), done.TranscriptCount())
			if failed := pipeline.FailedIDs(); len(failed) > 0 {
				fmt.Fprintf(deps.Out, ", %d translations failed", len(failed))
			}
			fmt.Fprintln(deps.Out, ")")

			for _, tr := range transcripts {
				ts := time.Duration(tr.Timestamp()) * time.Millisecond
				fmt.Fprintf(deps.Out, "  [%6s] %s\n", ts.Truncate(time.Second), tr.Text())
				if tl, ok := pipeline.Translation(tr.ID()); ok {
					fmt.Fprintf(deps.Out, "           %s\n", tl.TranslatedText())
				}
			}
			if s, ok := done.Summary(); ok {
				fmt.Fprintln(deps.Out, "Key points:")
				for _, kp := range s.KeyPoints() {
					fmt.Fprintf(deps.Out, "  - %s\n", kp)
				}
			}
			return nil
		},
	}

	recordCmd.Flags().StringVar(&title, "title", "", "Meeting title")
	recordCmd.Flags().StringVar(&sourceFlag, "source", "", "Spoken language (ko, en, ja, zh)")
	recordCmd.Flags().StringVar(&targetFlag, "target", "", "Translation target language")
	recordCmd.Flags().BoolVar(&noSummary, "no-summary", false, "Skip summary generation")
	return recordCmd
}
