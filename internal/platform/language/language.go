// Package language resolves practice languages from client hints.
package language

import (
	"strings"

	xlang "golang.org/x/text/language"
)

const Default = "en"

var supported = []xlang.Tag{
	xlang.English, // first entry is the matcher fallback
	xlang.German,
	xlang.French,
	xlang.Spanish,
	xlang.Italian,
	xlang.Dutch,
	xlang.Portuguese,
	xlang.Polish,
}

var matcher = xlang.NewMatcher(supported)

// Supported lists the base codes a session can practice in.
func Supported() []string {
	out := make([]string, 0, len(supported))
	for _, t := range supported {
		out = append(out, baseCode(t))
	}
	return out
}

// FromAcceptLanguage picks the best supported base code for an
// Accept-Language header value, falling back to Default.
func FromAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return Default
	}
	tags, _, err := xlang.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == xlang.No {
		return Default
	}
	return baseCode(supported[idx])
}

// Normalize maps any parseable tag to its supported base code. The second
// return is false for unparseable or unsupported input.
func Normalize(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	tag, err := xlang.Parse(code)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	for _, t := range supported {
		if b, _ := t.Base(); b == base {
			return base.String(), true
		}
	}
	return "", false
}

func baseCode(t xlang.Tag) string {
	b, _ := t.Base()
	return b.String()
}
