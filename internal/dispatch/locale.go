package dispatch

import (
	"net/http"

	"golang.org/x/text/language"
)

// supportedLocales and genericMessages are index-aligned.
var (
	supportedLocales = []language.Tag{
		language.English,
		language.Portuguese,
	}
	genericMessages = []string{
		"Internal server error",
		"Erro interno no servidor",
	}
	localeMatcher = language.NewMatcher(supportedLocales)
)

// matchLocale returns the index of the supported locale closest to tag, or
// fallback when nothing matches.
func matchLocale(fallback int, tags ...language.Tag) int {
	if len(tags) == 0 {
		return fallback
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return idx
}

// requestLocale honours the Accept-Language header of req.
func requestLocale(req *http.Request, fallback int) int {
	h := req.Header.Get("Accept-Language")
	if h == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(h)
	if err != nil {
		return fallback
	}
	return matchLocale(fallback, tags...)
}
