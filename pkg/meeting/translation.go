package meeting

import (
	"time"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
)

// Translation pairs one transcript with its translated text for a single
// (source, target) language pair.
type Translation struct {
	id             string
	transcriptID   string
	sourceText     string
	translatedText string
	sourceLanguage Language
	targetLanguage Language
	createdAt      time.Time
}

// TranslationRecord is the serializable form of a Translation.
type TranslationRecord struct {
	ID             string    `json:"id"`
	TranscriptID   string    `json:"transcript_id"`
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text"`
	SourceLanguage Language  `json:"source_language"`
	TargetLanguage Language  `json:"target_language"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewTranslation validates and constructs a Translation.
func NewTranslation(rec TranslationRecord) (Translation, error) {
	if rec.TranscriptID == "" {
		return Translation{}, lmerrors.Validation("translation transcript id cannot be empty")
	}
	if rec.SourceText == "" {
		return Translation{}, lmerrors.Validation("translation source text cannot be empty")
	}
	if rec.TranslatedText == "" {
		return Translation{}, lmerrors.Validation("translated text cannot be empty")
	}
	if rec.SourceLanguage == rec.TargetLanguage {
		return Translation{}, lmerrors.Validation("source and target language must differ")
	}
	return Translation{
		id:             rec.ID,
		transcriptID:   rec.TranscriptID,
		sourceText:     rec.SourceText,
		translatedText: rec.TranslatedText,
		sourceLanguage: rec.SourceLanguage,
		targetLanguage: rec.TargetLanguage,
		createdAt:      rec.CreatedAt,
	}, nil
}

func (t Translation) ID() string               { return t.id }
func (t Translation) TranscriptID() string     { return t.transcriptID }
func (t Translation) SourceText() string       { return t.sourceText }
func (t Translation) TranslatedText() string   { return t.translatedText }
func (t Translation) SourceLanguage() Language { return t.sourceLanguage }
func (t Translation) TargetLanguage() Language { return t.targetLanguage }
func (t Translation) CreatedAt() time.Time     { return t.createdAt }

// Record returns the serializable form of t.
func (t Translation) Record() TranslationRecord {
	return TranslationRecord{
		ID:             t.id,
		TranscriptID:   t.transcriptID,
		SourceText:     t.sourceText,
		TranslatedText: t.translatedText,
		SourceLanguage: t.sourceLanguage,
		TargetLanguage: t.targetLanguage,
		CreatedAt:      t.createdAt,
	}
}
