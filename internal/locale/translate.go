package locale

import "time"

var chineseWeekdays = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// Pick returns the text matching the request language, defaulting to Chinese.
func Pick(language, english, chinese string) string {
	if NormalizeLanguage(language) == LanguageEnglish {
		if english != "" {
			return english
		}
		return chinese
	}
	if chinese != "" {
		return chinese
	}
	return english
}

// WeekdayName names d in the given language.
func WeekdayName(language string, d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return ""
	}
	return Pick(language, d.String(), chineseWeekdays[d])
}
