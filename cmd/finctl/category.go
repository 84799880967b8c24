package main

import (
	"strings"
	"unicode"

	"github.com/jrsteele09/go-finance-client/screens"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// resolveCategory maps typed input onto a known category ignoring case and
// accents, so "saude" selects "Saúde". Unknown input is returned unchanged
// and rejected by the expense screen.
func resolveCategory(input string) string {
	key := foldCategory(input)
	for _, c := range screens.Categories {
		if foldCategory(c) == key {
			return c
		}
	}
	return input
}

func foldCategory(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		stripped = strings.TrimSpace(s)
	}
	return cases.Fold().String(stripped)
}
