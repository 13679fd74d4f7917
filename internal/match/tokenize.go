package match

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// stopWords are stripped from queries unless Options.KeepStopWords is set.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"can": {}, "do": {}, "for": {}, "from": {}, "how": {}, "i": {}, "in": {}, "is": {},
	"it": {}, "me": {}, "my": {}, "of": {}, "on": {}, "or": {}, "our": {}, "please": {},
	"some": {}, "that": {}, "the": {}, "this": {}, "to": {}, "use": {}, "using": {},
	"want": {}, "we": {}, "what": {}, "which": {}, "with": {}, "would": {}, "you": {},
}

// Tokenize splits text on Unicode word boundaries (UAX #29) and returns the
// normalised, case-folded words in order. Segments without a letter or digit
// (spaces, punctuation, emoji) are dropped. Duplicates are kept.
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	fold := cases.Fold()
	var out []string
	segments := words.FromString(norm.NFKC.String(text))
	for segments.Next() {
		seg := segments.Value()
		if !hasWordRune(seg) {
			continue
		}
		out = append(out, fold.String(seg))
	}
	return out
}

// keywordSet tokenises text into a set.
func keywordSet(text string) map[string]struct{} {
	toks := Tokenize(text)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}

// tagSet is the union of every tag's words; "case-fatality-rate" contributes
// case, fatality and rate.
func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tag := range tags {
		for _, t := range Tokenize(tag) {
			set[t] = struct{}{}
		}
	}
	return set
}

// queryKeywords returns the distinct query keywords in first-seen order.
func queryKeywords(query string, keepStopWords bool) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range Tokenize(query) {
		if !keepStopWords {
			if _, stop := stopWords[t]; stop {
				continue
			}
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
