package main

import (
	"unicode"
	"unicode/utf8"
)

// ChordLineToken is one run of a chord annotation: either a chord-ish word
// or the whitespace between words.
type ChordLineToken struct {
	Text       string `json:"text"`
	Whitespace bool   `json:"isWhitespace"`
}

// TokenizeChordLine splits a chord annotation into alternating runs of
// whitespace and non-whitespace so each chord can be handled on its own
// while the column layout is kept. Joining the token texts gives back the
// input unchanged. Content tokens are not checked against the chord grammar.
func TokenizeChordLine(text string) []ChordLineToken {
	tokens := []ChordLineToken{}

	start := 0
	inSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			tokens = append(tokens, ChordLineToken{Text: text[start:i], Whitespace: inSpace})
			start = i
			inSpace = space
		}
	}

	if start < len(text) {
		tokens = append(tokens, ChordLineToken{Text: text[start:], Whitespace: inSpace})
	}

	return tokens
}

// tokenColumns returns the rune column at which each content token starts
func tokenColumns(tokens []ChordLineToken) []int {
	var columns []int
	column := 0
	for _, token := range tokens {
		if !token.Whitespace {
			columns = append(columns, column)
		}
		column += utf8.RuneCountInString(token.Text)
	}
	return columns
}
