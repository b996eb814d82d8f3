package locale

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	LanguageChinese = "zh"
	LanguageEnglish = "en"
)

type Preference struct {
	Language string
	Locale   string
	HTMLLang string
}

// NormalizeLanguage maps a BCP 47 tag (or "cn") to a supported language, or "".
func NormalizeLanguage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.EqualFold(trimmed, "cn") {
		return LanguageChinese
	}
	tag, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return ""
	}
	return fromTag(tag)
}

// LanguageFromAcceptLanguage returns the highest weighted supported language of the header.
func LanguageFromAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return ""
	}
	for _, tag := range tags {
		if lang := fromTag(tag); lang != "" {
			return lang
		}
	}
	return ""
}

func fromTag(tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case LanguageChinese:
		return LanguageChinese
	case LanguageEnglish:
		return LanguageEnglish
	}
	return ""
}

func PreferenceForLanguage(language string) Preference {
	normalized := NormalizeLanguage(language)
	if normalized == LanguageEnglish {
		return Preference{Language: LanguageEnglish, Locale: "en_US", HTMLLang: "en-US"}
	}
	return Preference{Language: LanguageChinese, Locale: "zh_CN", HTMLLang: "zh-CN"}
}
