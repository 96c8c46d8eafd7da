package term

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/microblog/internal/domain"
)

// MinPrefixLen is the shortest final token still matched as a prefix.
// Shorter final tokens must match a whole word.
const MinPrefixLen = 2

// MaxTokens bounds the number of words a search term may contain.
const MaxTokens = 32

// Term is a parsed full-text search input (immutable value object).
// Every token must match; the last one may match as a word prefix.
type Term struct {
	raw    string
	tokens []string
}

// Parse splits raw into lower-cased word tokens. Punctuation separates words.
// A blank raw term or one with more than MaxTokens words is a bad request;
// a term made only of punctuation yields no tokens.
func Parse(raw string) (Term, error) {
	if strings.TrimSpace(raw) == "" {
		return Term{}, domain.ErrEmptySearchTerm
	}
	tokens := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) > MaxTokens {
		return Term{}, fmt.Errorf("%w: %d words, max %d", domain.ErrSearchTermTooLong, len(tokens), MaxTokens)
	}
	return Term{raw: raw, tokens: tokens}, nil
}

// Raw returns the input as given.
func (t Term) Raw() string { return t.raw }

// Tokens returns the words in input order.
func (t Term) Tokens() []string { return t.tokens }

// IsEmpty reports whether no word survived tokenization.
func (t Term) IsEmpty() bool { return len(t.tokens) == 0 }

// PrefixLast reports whether the last token is matched as a prefix.
func (t Term) PrefixLast() bool {
	if len(t.tokens) == 0 {
		return false
	}
	return utf8.RuneCountInString(t.tokens[len(t.tokens)-1]) >= MinPrefixLen
}
