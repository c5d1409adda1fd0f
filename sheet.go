package main

import (
	"fmt"
	"strings"
)

// sheetParser holds the state of a single ParseChordSheet pass
type sheetParser struct {
	sections   []Section
	current    *Section
	pending    string // chord row waiting for the lyric row below it
	hasPending bool
	autoIndex  int
}

// ParseChordSheet splits freeform chord-sheet text into sections of lines.
//
// Rows are classified in order as section headers ("[Chorus]"), blank rows,
// chord rows (every token chord shaped) or lyric rows. A chord row is held
// until the next row: a lyric row is paired with it, anything else flushes
// it on its own. Rows before the first header go into an automatically
// labeled section. A single trailing newline ends the last row. Malformed
// input never fails; the result may be empty.
func ParseChordSheet(text string) []Section {
	p := &sheetParser{sections: []Section{}}
	if text == "" {
		return p.sections
	}

	// a final newline terminates the last row rather than adding a blank one
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r", ""), "\n")

	rows := strings.Split(text, "\n")
	for _, row := range rows {
		p.parseRow(expandTabs(row))
	}

	p.flushPending()
	p.closeSection()

	return p.sections
}

func (p *sheetParser) parseRow(row string) {
	trimmed := strings.TrimSpace(row)

	// Section header
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		p.closeSection()

		label := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
		if label == "" {
			label = p.nextAutoLabel()
		}
		p.current = &Section{Label: label, Lines: []Line{}}

		// a chord row directly above a header is dropped
		p.pending = ""
		p.hasPending = false
		return
	}

	// Blank row
	if trimmed == "" {
		p.flushPending()
		p.appendLine(SpacerLine())
		return
	}

	if IsChordLine(row) {
		p.flushPending()
		p.pending = row
		p.hasPending = true
		return
	}

	if p.hasPending {
		p.appendLine(PairedLine(p.pending, row))
		p.pending = ""
		p.hasPending = false
		return
	}

	p.appendLine(LyricLine(row))
}

// flushPending emits a held chord row as a chords-only line
func (p *sheetParser) flushPending() {
	if !p.hasPending {
		return
	}
	p.appendLine(ChordLine(p.pending))
	p.pending = ""
	p.hasPending = false
}

func (p *sheetParser) appendLine(line Line) {
	if p.current == nil {
		p.current = &Section{Label: p.nextAutoLabel(), Lines: []Line{}}
	}
	p.current.Lines = append(p.current.Lines, line)
}

// closeSection emits the current section unless it has no lines
func (p *sheetParser) closeSection() {
	if p.current != nil && len(p.current.Lines) > 0 {
		p.sections = append(p.sections, *p.current)
	}
	p.current = nil
}

func (p *sheetParser) nextAutoLabel() string {
	p.autoIndex++
	return fmt.Sprintf("Section %d", p.autoIndex)
}

// FormatChordSheet renders sections back to plain chord-sheet text: a
// bracketed header per section, chords above lyrics and an empty row per
// spacer, each row newline terminated. Parsing the result gives back the
// same sections, except that a chords-only line closing any section but the
// last is lost to the header that follows it.
func FormatChordSheet(sections []Section) string {
	var rows []string

	for _, section := range sections {
		rows = append(rows, fmt.Sprintf("[%s]", section.Label))

		for _, line := range section.Lines {
			if line.Spacer {
				rows = append(rows, "")
				continue
			}
			if line.Chords != "" {
				rows = append(rows, line.Chords)
			}
			if line.Lyrics != "" {
				rows = append(rows, line.Lyrics)
			}
		}
	}

	if len(rows) == 0 {
		return ""
	}
	return strings.Join(rows, "\n") + "\n"
}
