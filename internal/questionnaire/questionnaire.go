// Package questionnaire maps post categories to the case-value questionnaire
// for the matching case type.
package questionnaire

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultURL is the case selection page, used when no category matches.
const DefaultURL = "https://casevalue.law/"

const baseURL = "https://casevalue.law/#case/"

// caseTypes maps each case type to the categories that lead to it.
var caseTypes = map[string][]string{
	"motor":          {"motor-vehicle", "auto-accident", "car-accident", "personal-injury"},
	"medical":        {"medical-malpractice", "medical"},
	"premises":       {"premises-liability", "slip-and-fall"},
	"product":        {"product-liability", "defective-product"},
	"wrongful_death": {"wrongful-death"},
	"dog_bite":       {"dog-bite", "dog-bites", "animal-attack"},
	"wrongful_term":  {"wrongful-termination", "employment", "employment-law"},
	"wage":           {"wage-hour", "wage-theft", "unpaid-wages"},
	"class_action":   {"class-action", "mass-tort", "consumer-rights"},
	"insurance":      {"insurance", "insurance-bad-faith"},
	"disability":     {"disability", "disability-discrimination"},
	"professional":   {"professional-malpractice", "legal-malpractice"},
	"civil_rights":   {"civil-rights", "discrimination"},
	"ip":             {"intellectual-property", "ip", "trademark", "copyright", "patent"},
}

// urls is built once and never written afterwards.
var urls = func() map[string]string {
	m := make(map[string]string)
	for caseType, categories := range caseTypes {
		u := CaseURL(caseType)
		for _, c := range categories {
			m[c] = u
		}
	}
	return m
}()

// CaseURL returns the questionnaire URL for a case type.
func CaseURL(caseType string) string {
	return baseURL + caseType + "/0"
}

// Lookup returns the questionnaire URL mapped to a single category.
func Lookup(category string) (string, bool) {
	u, ok := urls[category]
	return u, ok
}

// ResolveURL returns the URL for the first category that has a mapping, or
// DefaultURL when none does.
func ResolveURL(categories []string) string {
	for _, c := range categories {
		if u, ok := urls[c]; ok {
			return u
		}
	}
	return DefaultURL
}

// DisplayName formats the first category for CTA copy, whether or not it
// has a questionnaire mapping. It reports false when there are no
// categories.
func DisplayName(categories []string) (string, bool) {
	if len(categories) == 0 {
		return "", false
	}
	return FormatCategory(categories[0]), true
}

// FormatCategory turns "car-accident" into "Car Accident". Only the first
// letter of each hyphen-separated word changes.
func FormatCategory(category string) string {
	upper := cases.Upper(language.Und)
	words := strings.Split(category, "-")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = upper.String(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// ParseCategories splits a comma-separated category list, trimming spaces
// and dropping empty entries. It returns nil for an empty list.
func ParseCategories(list string) []string {
	var out []string
	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
