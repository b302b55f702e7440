package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lingomeet/lingomeet/pkg/meeting"
	"github.com/lingomeet/lingomeet/pkg/realtime"
)

// NewRoomCommand builds the room command group for shared meetings: create a
// room, join one by code.
func NewRoomCommand(deps *CommandDeps) *cobra.Command {
	deps.defaults()

	roomCmd := &cobra.Command{
		Use:   "room",
		Short: "Host or join a shared meeting room",
		Long: `Host or join a shared meeting room over the realtime backend.

Rooms relay transcripts, status changes, and participant presence between
the host and remote participants. Configure the backend with the redis
section of the config file.

Examples:
  lingomeet room create --title "All hands"
  lingomeet room join ABC-234 --name Dana`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if deps.Coordinator == nil {
				return fmt.Errorf("realtime backend not configured (set redis.addr in the config file)")
			}
			return nil
		},
	}

	var (
		createTitle string
		createName  string
		sourceFlag  string
		targetFlag  string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a shared meeting and print its join code",
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
			if createTitle == "" {
				createTitle = "Meeting " + time.Now().Format("2006-01-02 15:04")
			}

			host, err := meeting.NewParticipant(meeting.ParticipantRecord{
				UserID:         uuid.NewString(),
				DisplayName:    displayName(deps, createName),
				Role:           meeting.RoleHost,
				JoinedAt:       time.Now(),
				TargetLanguage: target,
			})
			if err != nil {
				return err
			}

			m, err := deps.Coordinator.CreateMeeting(cmd.Context(), createTitle, source, target, host)
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.Out, "Meeting %q created.\n", m.Title())
			fmt.Fprintf(deps.Out, "Join code: %s\n", m.Code())
			return nil
		},
	}
	createCmd.Flags().StringVar(&createTitle, "title", "", "Meeting title")
	createCmd.Flags().StringVar(&createName, "name", "", "Your display name")
	createCmd.Flags().StringVar(&sourceFlag, "source", "", "Spoken language (ko, en, ja, zh)")
	createCmd.Flags().StringVar(&targetFlag, "target", "", "Translation target language")

	var joinName string
	joinCmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a shared meeting by code and follow its streams",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := deps.Config.TargetLanguage
			p, err := meeting.NewParticipant(meeting.ParticipantRecord{
				UserID:         uuid.NewString(),
				DisplayName:    displayName(deps, joinName),
				Role:           meeting.RoleParticipant,
				JoinedAt:       time.Now(),
				TargetLanguage: target,
			})
			if err != nil {
				return err
			}

			m, err := deps.Coordinator.Join(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			if m == nil {
				fmt.Fprintf(deps.Out, "No meeting with code %s.\n", meeting.NormalizeCode(args[0]))
				return nil
			}

			fmt.Fprintf(deps.Out, "Joined %q (%s). Press Ctrl-C to leave.\n", m.Title(), m.Code())

			unsub, err := deps.Coordinator.Subscribe(cmd.Context(), m.Code(), realtime.Handlers{
				OnTranscript: func(tr meeting.TranscriptRecord) {
					ts := time.Duration(tr.Timestamp) * time.Millisecond
					speaker := tr.Speaker.Name
					if speaker == "" {
						speaker = "host"
					}
					fmt.Fprintf(deps.Out, "[%6s] %s: %s\n", ts.Truncate(time.Second), speaker, tr.Text)
				},
				OnStatus: func(ev realtime.StatusEvent) {
					fmt.Fprintf(deps.Out, "-- meeting is now %s\n", ev.Status)
				},
				OnPresence: func(ev realtime.PresenceEvent) {
					fmt.Fprintf(deps.Out, "-- %s %s\n", ev.Participant.DisplayName, ev.Kind)
				},
			})
			if err != nil {
				deps.Coordinator.Leave(cmd.Context(), m.Code(), p.UserID())
				return err
			}
			defer unsub()

			<-cmd.Context().Done()
			// The command context is already cancelled; give the leave its
			// own deadline so the departure still reaches the room.
			leaveCtx, cancel := context.WithTimeout(context.Background(), deps.Config.Timeout)
			defer cancel()
			deps.Coordinator.Leave(leaveCtx, m.Code(), p.UserID())
			fmt.Fprintln(deps.Out, "Left the meeting.")
			return nil
		},
	}
	joinCmd.Flags().StringVar(&joinName, "name", "", "Your display name")

	roomCmd.AddCommand(createCmd, joinCmd)
	return roomCmd
}

func displayName(deps *CommandDeps, flag string) string {
	if flag != "" {
		return flag
	}
	if deps.Config.DisplayName != "" {
		return deps.Config.DisplayName
	}
	return "Guest"
}
