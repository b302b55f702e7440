package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lingomeet/lingomeet/config"
	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/meeting"
	"github.com/lingomeet/lingomeet/pkg/summary"
)

// NewMeetingCommand builds the meeting command group: list, show, delete,
// summarize.
func NewMeetingCommand(deps *CommandDeps) *cobra.Command {
	deps.defaults()

	meetingCmd := &cobra.Command{
		Use:   "meeting",
		Short: "Manage saved meetings",
		Long: `Manage meetings saved by previous recording sessions.

Examples:
  lingomeet meeting list
  lingomeet meeting show 4f7c9a12
  lingomeet meeting summarize 4f7c9a12
  lingomeet meeting delete 4f7c9a12`,
	}

	var listUser string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved meetings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			meetings, err := deps.Repo.List(cmd.Context(), listUser)
			if err != nil {
				return fmt.Errorf("listing meetings: %w", err)
			}
			if len(meetings) == 0 {
				fmt.Fprintln(deps.Out, "No meetings saved.")
				return nil
			}

			switch deps.Config.OutputFormat {
			case config.OutputFormatJSON, config.OutputFormatYAML:
				snaps := make([]meeting.Snapshot, len(meetings))
				for i, m := range meetings {
					snaps[i] = m.Snapshot()
				}
				if deps.Config.OutputFormat == config.OutputFormatJSON {
					return outputJSON(deps.Out, snaps)
				}
				return outputYAML(deps.Out, snaps)
			}

			for _, m := range meetings {
				dur := time.Duration(m.Duration()) * time.Millisecond
				fmt.Fprintf(deps.Out, "%s  %-10s %-25s %s\n",
					m.ID(), m.Status(), m.Title(), dur.Truncate(time.Second))
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&listUser, "user", "", "List meetings owned by this user id")

	var showTranscripts bool
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := deps.Repo.Get(cmd.Context(), args[0])
			if lmerrors.IsNotFound(err) {
				return fmt.Errorf("no meeting with id %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("loading meeting: %w", err)
			}
			if err := renderMeeting(deps.Out, deps.Config.OutputFormat, m); err != nil {
				return err
			}
			if showTranscripts && deps.Config.OutputFormat == config.OutputFormatText {
				fmt.Fprintln(deps.Out, "  Transcript:")
				renderTranscripts(deps.Out, m.Transcripts())
			}
			return nil
		},
	}
	showCmd.Flags().BoolVarP(&showTranscripts, "transcripts", "t", false, "Include the full transcript")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := deps.Repo.Delete(cmd.Context(), args[0])
			if lmerrors.IsNotFound(err) {
				return fmt.Errorf("no meeting with id %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("deleting meeting: %w", err)
			}
			fmt.Fprintf(deps.Out, "Deleted meeting %s\n", args[0])
			return nil
		},
	}

	var summarizeLang string
	summarizeCmd := &cobra.Command{
		Use:   "summarize <id>",
		Short: "Generate and store a summary for a completed meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := deps.Repo.Get(cmd.Context(), args[0])
			if lmerrors.IsNotFound(err) {
				return fmt.Errorf("no meeting with id %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("loading meeting: %w", err)
			}

			lang := m.TargetLanguage()
			if summarizeLang != "" {
				lang, err = meeting.ParseLanguage(summarizeLang)
				if err != nil {
					return err
				}
			}

			s, err := deps.summarizer()
			if err != nil {
				return err
			}
			gen := summary.NewGenerator(s)
			sum, err := gen.Generate(cmd.Context(), m, lang)
			if err != nil {
				return fmt.Errorf("generating summary: %w", err)
			}

			m = m.SetSummary(sum, time.Now())
			if err := deps.Repo.Save(cmd.Context(), m); err != nil {
				return fmt.Errorf("saving summary: %w", err)
			}

			fmt.Fprintln(deps.Out, "Key points:")
			for _, kp := range sum.KeyPoints() {
				fmt.Fprintf(deps.Out, "  - %s\n", kp)
			}
			fmt.Fprintf(deps.Out, "\n%s\n", sum.FullText())
			return nil
		},
	}
	summarizeCmd.Flags().StringVar(&summarizeLang, "lang", "", "Summary language (ko, en, ja, zh); defaults to the meeting target")

	meetingCmd.AddCommand(listCmd, showCmd, deleteCmd, summarizeCmd)
	return meetingCmd
}
