// Package cmd provides CLI commands for the lingomeet tool.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/lingomeet/lingomeet/config"
	"github.com/lingomeet/lingomeet/credentials"
	"github.com/lingomeet/lingomeet/pkg/logging"
	"github.com/lingomeet/lingomeet/pkg/meeting"
	"github.com/lingomeet/lingomeet/pkg/realtime"
	"github.com/lingomeet/lingomeet/pkg/storage"
	"github.com/lingomeet/lingomeet/pkg/summary"
	"github.com/lingomeet/lingomeet/pkg/translation"
)

// CommandDeps carries the shared collaborators into command constructors, so
// tests can substitute fakes.
type CommandDeps struct {
	Config  *config.CLIConfig
	Repo    storage.MeetingRepository
	Secrets *credentials.Store
	Logger  logging.Logger

	// Translator and Summarizer are built from config when nil.
	Translator translation.Translator
	Summarizer summary.Summarizer

	// Coordinator is nil when no realtime backend is configured.
	Coordinator *realtime.Coordinator

	// Registry receives the pipeline metrics. Defaults to a private
	// registry so repeated construction cannot collide.
	Registry prometheus.Registerer

	// In and Out default to stdin and stdout.
	In  io.Reader
	Out io.Writer

	translationMetrics *translation.Metrics
}

func (d *CommandDeps) defaults() {
	if d.Config == nil {
		d.Config = config.DefaultConfig()
	}
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
}

// pipelineMetrics registers the translation metrics on first use. Registering
// once per deps keeps repeated command runs off the duplicate-metric panic.
func (d *CommandDeps) pipelineMetrics() *translation.Metrics {
	if d.translationMetrics == nil {
		d.translationMetrics = translation.NewMetrics(d.Registry)
	}
	return d.translationMetrics
}

// translator returns the configured translator, defaulting to MyMemory.
func (d *CommandDeps) translator() translation.Translator {
	if d.Translator != nil {
		return d.Translator
	}
	return translation.NewMyMemoryClient(translation.MyMemoryOptions{
		Email:  d.Config.MyMemoryEmail,
		Logger: d.Logger,
	})
}

// summarizer returns the configured summarizer, defaulting to the local
// extractive one. The OpenAI backend needs a stored API key.
func (d *CommandDeps) summarizer() (summary.Summarizer, error) {
	if d.Summarizer != nil {
		return d.Summarizer, nil
	}
	if d.Config.Summarizer == config.SummarizerOpenAI {
		if d.Secrets == nil {
			return nil, fmt.Errorf("openai summarizer requires a credential store")
		}
		key, err := d.Secrets.Get(credentials.SecretOpenAIKey)
		if err != nil {
			return nil, fmt.Errorf("openai summarizer: %w (run 'lingomeet auth set-key')", err)
		}
		return summary.NewOpenAISummarizer(summary.OpenAIOptions{
			APIKey: key,
			Model:  d.Config.OpenAIModel,
			Logger: d.Logger,
		}), nil
	}
	return summary.NewExtractive(), nil
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML writes v as YAML.
func outputYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// renderMeeting writes a meeting in the configured output format.
func renderMeeting(w io.Writer, format config.OutputFormat, m meeting.Meeting) error {
	switch format {
	case config.OutputFormatJSON:
		return outputJSON(w, m.Snapshot())
	case config.OutputFormatYAML:
		return outputYAML(w, m.Snapshot())
	default:
		return renderMeetingHuman(w, m)
	}
}

func renderMeetingHuman(w io.Writer, m meeting.Meeting) error {
	fmt.Fprintf(w, "Meeting: %s\n", m.Title())
	fmt.Fprintf(w, "  ID:        %s\n", m.ID())
	if m.Code() != "" {
		fmt.Fprintf(w, "  Code:      %s\n", m.Code())
	}
	fmt.Fprintf(w, "  Status:    %s\n", m.Status())
	fmt.Fprintf(w, "  Languages: %s -> %s\n", m.SourceLanguage(), m.TargetLanguage())
	fmt.Fprintf(w, "  Created:   %s\n", m.CreatedAt().Format(time.RFC3339))
	fmt.Fprintf(w, "  Duration:  %s\n", (time.Duration(m.Duration()) * time.Millisecond).String())
	fmt.Fprintf(w, "  Lines:     %d\n", m.TranscriptCount())

	if s, ok := m.Summary(); ok {
		fmt.Fprintln(w, "  Key points:")
		for _, kp := range s.KeyPoints() {
			fmt.Fprintf(w, "    - %s\n", kp)
		}
	}
	return nil
}

// renderTranscripts writes the transcript list with timestamps.
func renderTranscripts(w io.Writer, transcripts []meeting.Transcript) {
	for _, t := range transcripts {
		ts := time.Duration(t.Timestamp()) * time.Millisecond
		marker := ""
		if !t.IsFinal() {
			marker = " …"
		}
		fmt.Fprintf(w, "  [%6s] %s%s\n", ts.Truncate(time.Second), t.Text(), marker)
	}
}
