// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// Supported lists the locales with registered error messages. The first entry
// is the fallback.
var Supported = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(Supported)

// Resolve maps a requested locale onto the closest supported tag.
func Resolve(requested language.Tag) language.Tag {
	_, index, _ := matcher.Match(requested)
	return Supported[index]
}

// ParseLocale resolves a raw locale string, falling back to English when the
// value cannot be parsed.
func ParseLocale(raw string) language.Tag {
	tag, err := language.Parse(raw)
	if err != nil {
		return Supported[0]
	}
	return Resolve(tag)
}

// Format renders the localized message for code, executing metadata as
// template data. Unknown codes render as the code itself.
func Format(tag language.Tag, code Code, metadata map[string]string) string {
	key := messageKey(code)
	printer := message.NewPrinter(Resolve(tag))
	text := printer.Sprintf(key)
	if text == key {
		return code
	}

	tmpl, err := template.New(code).Parse(text)
	if err != nil {
		return text
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return text
	}
	return buf.String()
}

func messageKey(code Code) string {
	return "error." + code
}
