// Package meeting holds the domain model for live multilingual meetings:
// the Meeting aggregate with its lifecycle state machine, transcript,
// translation, summary and participant value objects, the shareable meeting
// code generator, and the local/remote transcript merge.
//
// All entities are immutable: constructors validate, mutators return a new
// value and never touch the receiver. Old references stay valid snapshots.
package meeting

import (
	"golang.org/x/text/language"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
)

// Language is one of the four supported meeting languages.
type Language string

const (
	LanguageKorean   Language = "ko"
	LanguageEnglish  Language = "en"
	LanguageJapanese Language = "ja"
	LanguageChinese  Language = "zh"
)

// SupportedLanguages lists every valid Language in display order.
var SupportedLanguages = []Language{
	LanguageKorean,
	LanguageEnglish,
	LanguageJapanese,
	LanguageChinese,
}

// ParseLanguage validates a language code.
func ParseLanguage(code string) (Language, error) {
	l := Language(code)
	if !l.Valid() {
		return "", lmerrors.Validation("unsupported language %q", code)
	}
	return l, nil
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	switch l {
	case LanguageKorean, LanguageEnglish, LanguageJapanese, LanguageChinese:
		return true
	}
	return false
}

func (l Language) String() string {
	return string(l)
}

var languageTags = map[Language]language.Tag{
	LanguageKorean:   language.MustParse("ko-KR"),
	LanguageEnglish:  language.MustParse("en-US"),
	LanguageJapanese: language.MustParse("ja-JP"),
	LanguageChinese:  language.MustParse("zh-CN"),
}

// Tag returns the BCP-47 tag speech engines expect for l.
func (l Language) Tag() language.Tag {
	if tag, ok := languageTags[l]; ok {
		return tag
	}
	return language.Und
}

var languageLabels = map[Language]map[Language]string{
	LanguageKorean:   {LanguageKorean: "한국어", LanguageEnglish: "Korean", LanguageJapanese: "韓国語", LanguageChinese: "韩语"},
	LanguageEnglish:  {LanguageKorean: "영어", LanguageEnglish: "English", LanguageJapanese: "英語", LanguageChinese: "英语"},
	LanguageJapanese: {LanguageKorean: "일본어", LanguageEnglish: "Japanese", LanguageJapanese: "日本語", LanguageChinese: "日语"},
	LanguageChinese:  {LanguageKorean: "중국어", LanguageEnglish: "Chinese", LanguageJapanese: "中国語", LanguageChinese: "中文"},
}

// Label returns the name of l in the given display language.
func (l Language) Label(display Language) string {
	if labels, ok := languageLabels[l]; ok {
		if label, ok := labels[display]; ok {
			return label
		}
	}
	return string(l)
}
