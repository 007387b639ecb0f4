// Package i18n resolves the display language and translates UI strings.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Lang is a supported display language.
type Lang string

const (
	EN Lang = "en"
	FR Lang = "fr"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the viewer's language preference.
	LangCookieName = "tome_lang"
)

var (
	supported    = []Lang{EN, FR}
	supportedTag = []language.Tag{language.English, language.French}
	matcher      = language.NewMatcher(supportedTag)
)

// Supported returns the supported languages in display order.
func Supported() []Lang {
	return append([]Lang(nil), supported...)
}

// Tag returns the BCP 47 tag for l.
func (l Lang) Tag() language.Tag {
	if l == FR {
		return language.French
	}
	return language.English
}

// String implements fmt.Stringer.
func (l Lang) String() string {
	return string(l)
}

// Parse maps a language tag ("fr", "fr-CA", "EN") onto a supported language.
func Parse(value string) (Lang, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return "", false
	}
	return supported[idx], true
}

// ParseOr is Parse with a fallback for unsupported values.
func ParseOr(value string, fallback Lang) Lang {
	if l, ok := Parse(value); ok {
		return l
	}
	return fallback
}

// FromRequest determines the language for r: the lang query parameter,
// then the language cookie, then Accept-Language, then fallback.
// The bool reports whether the choice came from the query and should be persisted.
func FromRequest(r *http.Request, fallback Lang) (Lang, bool) {
	if r == nil {
		return fallback, false
	}

	if l, ok := Parse(r.URL.Query().Get(LangParam)); ok {
		return l, true
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if l, ok := Parse(cookie.Value); ok {
			return l, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return supported[idx], false
			}
		}
	}

	return fallback, false
}

// SetCookie persists the selected language on the response.
func SetCookie(w http.ResponseWriter, l Lang) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    string(l),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}
