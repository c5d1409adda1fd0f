package main

import (
	"strings"
)

// tabWidth is the number of spaces a tab expands to in sheet text
const tabWidth = 4

// noChordMarker is the "no chord" symbol used in sheets
const noChordMarker = "N.C."

// chordQualities are the suffixes recognised directly after the root.
// Matching is case-insensitive, so "M" and "m" are the same entry and
// "mMaj" is listed in lower case.
var chordQualities = []string{"", "maj", "m", "dim", "aug", "sus", "add", "mmaj"}

// IsChordToken reports whether a single whitespace-free token looks like a
// chord symbol, a repeat marker (x2, x12) or the N.C. marker.
//
// The grammar is heuristic and is matched case-insensitively against the
// whole token:
//
//	root        A-G
//	accidental  # | b                          (optional)
//	quality     maj | M | m | dim | aug | sus | add | mMaj   (optional)
//	extension   any run of 0-9 # b ( ) / + -
//	bass        / root accidental?             (optional)
func IsChordToken(token string) bool {
	if token == "" {
		return false
	}

	if strings.EqualFold(token, noChordMarker) {
		return true
	}

	if isRepeatMarker(token) {
		return true
	}

	if !isChordRoot(token[0]) {
		return false
	}

	i := 1
	if i < len(token) && isAccidental(token[i]) {
		i++
	}

	for _, quality := range chordQualities {
		rest := token[i:]
		if len(rest) < len(quality) || !strings.EqualFold(rest[:len(quality)], quality) {
			continue
		}
		if isChordTail(rest[len(quality):]) {
			return true
		}
	}

	return false
}

// IsChordLine reports whether every whitespace-separated token of the line
// is chord shaped. A single lyric-like token makes the whole line a lyric.
func IsChordLine(line string) bool {
	sanitized := strings.TrimSpace(expandTabs(line))
	if sanitized == "" {
		return false
	}

	tokens := strings.Fields(sanitized)
	if len(tokens) == 0 {
		return false
	}

	for _, token := range tokens {
		if !IsChordToken(token) {
			return false
		}
	}
	return true
}

// isRepeatMarker matches x followed by one or more digits
func isRepeatMarker(token string) bool {
	if len(token) < 2 || (token[0] != 'x' && token[0] != 'X') {
		return false
	}
	for i := 1; i < len(token); i++ {
		if !isDigit(token[i]) {
			return false
		}
	}
	return true
}

// isChordTail matches the extension run plus an optional slash bass.
// The slash is itself an extension character, so "6/9" is a valid run.
func isChordTail(tail string) bool {
	if isExtensionRun(tail) {
		return true
	}

	// bass note with and without accidental
	for _, n := range []int{2, 3} {
		if len(tail) < n {
			continue
		}
		bass := tail[len(tail)-n:]
		if bass[0] != '/' || !isChordRoot(bass[1]) {
			continue
		}
		if n == 3 && !isAccidental(bass[2]) {
			continue
		}
		if isExtensionRun(tail[:len(tail)-n]) {
			return true
		}
	}

	return false
}

func isExtensionRun(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isExtension(s[i]) {
			return false
		}
	}
	return true
}

func isExtension(c byte) bool {
	switch c {
	case '#', 'b', 'B', '(', ')', '/', '+', '-':
		return true
	}
	return isDigit(c)
}

func isChordRoot(c byte) bool {
	return (c >= 'A' && c <= 'G') || (c >= 'a' && c <= 'g')
}

func isAccidental(c byte) bool {
	return c == '#' || c == 'b' || c == 'B'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
