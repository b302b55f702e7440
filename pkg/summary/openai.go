package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lingomeet/lingomeet/pkg/logging"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

const defaultOpenAIModel = openai.ChatModelGPT4oMini

// OpenAISummarizer summarizes meetings through the OpenAI chat API. It asks
// for JSON so the key points come back structured.
type OpenAISummarizer struct {
	client openai.Client
	model  string
	log    logging.Logger
	now    func() time.Time
	newID  func() string
}

// OpenAIOptions configures an OpenAISummarizer.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  logging.Logger
}

// NewOpenAISummarizer builds an LLM-backed summarizer.
func NewOpenAISummarizer(opts OpenAIOptions) *OpenAISummarizer {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Model == "" {
		opts.Model = defaultOpenAIModel
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return &OpenAISummarizer{
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
		log:    opts.Logger.With(logging.F("component", "openai_summary")),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

type llmSummary struct {
	KeyPoints []string `json:"key_points"`
	Summary   string   `json:"summary"`
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, transcripts []meeting.Transcript, lang meeting.Language, meetingID string) (meeting.Summary, error) {
	var lines []string
	for _, t := range transcripts {
		if t.IsFinal() {
			lines = append(lines, t.Text())
		}
	}
	if len(lines) == 0 {
		return meeting.NewSummary(meeting.SummaryRecord{
			ID:        s.newID(),
			MeetingID: meetingID,
			KeyPoints: []string{"No transcripts available"},
			FullText:  "No transcripts to summarize.",
			Language:  lang,
			CreatedAt: s.now(),
		})
	}

	prompt := fmt.Sprintf(
		"Summarize this meeting transcript in %s. Respond with JSON: "+
			`{"key_points": ["..."], "summary": "..."}. `+
			"Use 3 to 7 key points.\n\n%s",
		lang.Label(meeting.LanguageEnglish), strings.Join(lines, "\n"))

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You summarize meeting transcripts faithfully and concisely."),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return meeting.Summary{}, fmt.Errorf("summarization request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return meeting.Summary{}, fmt.Errorf("summarization returned no choices")
	}

	var parsed llmSummary
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return meeting.Summary{}, fmt.Errorf("failed to parse summarization output: %w", err)
	}
	if len(parsed.KeyPoints) == 0 || parsed.Summary == "" {
		return meeting.Summary{}, fmt.Errorf("summarization output incomplete")
	}

	s.log.Debug("summary generated",
		logging.F("meeting_id", meetingID),
		logging.F("key_points", len(parsed.KeyPoints)))
	return meeting.NewSummary(meeting.SummaryRecord{
		ID:        s.newID(),
		MeetingID: meetingID,
		KeyPoints: parsed.KeyPoints,
		FullText:  parsed.Summary,
		Language:  lang,
		CreatedAt: s.now(),
	})
}
