// Package dlocale provides the locale, calendar, and time-zone values that a World hands out: what
// the environment says they are (the Live* functions), or fixed values for tests (the Mock*
// functions).
package dlocale

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

// A Locale identifies a language and region, by both a POSIX-style identifier ("en_US") and a
// BCP 47 language tag ("en-US").
type Locale struct {
	id  string
	tag language.Tag
}

// Predefined locales.
var (
	POSIX   = Locale{id: "en_US_POSIX", tag: language.AmericanEnglish}
	US      = Locale{id: "en_US", tag: language.AmericanEnglish}
	UK      = Locale{id: "en_GB", tag: language.BritishEnglish}
	Germany = Locale{id: "de_DE", tag: language.MustParse("de-DE")}
	China   = Locale{id: "zh_CN", tag: language.MustParse("zh-CN")}
	Japan   = Locale{id: "ja_JP", tag: language.MustParse("ja-JP")}
	Brazil  = Locale{id: "pt_BR", tag: language.BrazilianPortuguese}
	Korea   = Locale{id: "ko_KR", tag: language.MustParse("ko-KR")}
)

// ID returns the POSIX-style identifier, such as "en_US".
func (l Locale) ID() string {
	if l.id == "" {
		return POSIX.id
	}
	return l.id
}

// Tag returns the BCP 47 language tag.
func (l Locale) Tag() language.Tag {
	if l.id == "" {
		return POSIX.tag
	}
	return l.tag
}

// Region returns the ISO 3166 region code ("US"), or "" if the Locale names no region.
func (l Locale) Region() string {
	region, conf := l.Tag().Region()
	if conf != language.Exact {
		return ""
	}
	return region.String()
}

func (l Locale) String() string {
	return l.ID()
}

// ParseLocale parses a locale identifier in either POSIX form ("en_US", "de_DE.UTF-8",
// "de_DE@euro") or BCP 47 form ("en-GB").  "", "C", and "POSIX" all mean POSIX.
func ParseLocale(s string) (Locale, error) {
	name := strings.TrimSpace(s)
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "", "C", "POSIX":
		return POSIX, nil
	}

	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return Locale{}, errors.Wrapf(err, "invalid locale %q", s)
	}
	base, _ := tag.Base()
	id := base.String()
	if region, conf := tag.Region(); conf == language.Exact {
		id += "_" + region.String()
	}
	return Locale{id: id, tag: tag}, nil
}

// LiveLocale returns the locale that the process environment selects: the first of $LC_ALL,
// $LC_MESSAGES, or $LANG that is set to something parseable.  If none is, it returns POSIX.
func LiveLocale() Locale {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		val, ok := os.LookupEnv(name)
		if !ok || val == "" {
			continue
		}
		if locale, err := ParseLocale(val); err == nil {
			return locale
		}
	}
	return POSIX
}

// MockLocale is the locale that a mock World starts with.
func MockLocale() Locale {
	return US
}
