// Package textfilter softens NPC and player lines when adult content is
// switched off. Dialog pools are written for the adult-enabled game, so
// the family-friendly rendering is produced by substitution rather than
// by maintaining a second copy of every line.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps filtered words to their family-friendly stand-ins.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"badass":       "tough",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"sexy":         "lovely",
	"naughty":      "cheeky",
	"naked":        "undressed",
	"seductive":    "charming",
}

// Filter rewrites profanity and suggestive wording.
type Filter struct {
	pattern *regexp.Regexp
}

// New compiles the filter.
func New() *Filter {
	words := make([]string, 0, len(replacements))
	for w := range replacements {
		words = append(words, regexp.QuoteMeta(w))
	}
	return &Filter{
		pattern: regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`),
	}
}

// Clean replaces every filtered word, preserving the case of the original.
func (f *Filter) Clean(text string) string {
	return f.pattern.ReplaceAllStringFunc(text, func(match string) string {
		repl, ok := replacements[strings.ToLower(match)]
		if !ok {
			return match
		}
		return preserveCase(match, repl)
	})
}

// Apply cleans text only when adult content is disabled.
func (f *Filter) Apply(text string, adultMode bool) string {
	if adultMode {
		return text
	}
	return f.Clean(text)
}

// HasFilteredWords reports whether text contains anything Clean would
// rewrite.
func (f *Filter) HasFilteredWords(text string) bool {
	return f.pattern.MatchString(text)
}

// preserveCase applies the case shape of the original word to the
// replacement.
func preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return replacement
	}
	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: mirror the original character by character.
	out := make([]rune, 0, len(replacement))
	origRunes := []rune(original)
	for i, r := range replacement {
		if i < len(origRunes) && unicode.IsUpper(origRunes[i]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
