package main

// Defaults applied by NormalizeSong when a record does not carry the field
const (
	DefaultTitle      = "Untitled Sheet"
	DefaultArtist     = "Unknown Artist"
	DefaultSource     = "Scraped"
	DefaultKey        = "—"
	DefaultBPM        = "—"
	DefaultTuning     = "Standard"
	DefaultLastSynced = "just now"
)

// Song is the canonical song representation. A Song owns its sections and
// is not modified after NormalizeSong returns it.
type Song struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Source     string    `json:"source"`
	Key        string    `json:"key"`
	BPM        string    `json:"bpm"`
	Tuning     string    `json:"tuning"`
	Tags       []string  `json:"tags"`
	LastSynced string    `json:"lastSynced"`
	Notes      string    `json:"notes"`
	Body       string    `json:"body"`
	Sections   []Section `json:"sections"`
	Chords     []string  `json:"chords"` // palette, as supplied
}

// Section is a labeled, ordered group of lines
type Section struct {
	Label string `json:"label"`
	Lines []Line `json:"lines"`
}

// Line pairs an optional chord annotation with an optional lyric. A spacer
// line stands in for a blank row of the source text and carries neither.
type Line struct {
	Chords string `json:"chords"`
	Lyrics string `json:"lyrics"`
	Spacer bool   `json:"spacer,omitempty"`
}

// ChordLine is a chord annotation with no lyric under it
func ChordLine(chords string) Line {
	return Line{Chords: chords}
}

// LyricLine is a lyric row with no chords above it
func LyricLine(lyrics string) Line {
	return Line{Lyrics: lyrics}
}

// PairedLine is a chord annotation together with the lyric it sits over
func PairedLine(chords, lyrics string) Line {
	return Line{Chords: chords, Lyrics: lyrics}
}

// SpacerLine preserves one blank row of the source layout
func SpacerLine() Line {
	return Line{Spacer: true}
}

// IsEmpty reports whether a non-spacer line has nothing to show.
func (l Line) IsEmpty() bool {
	return !l.Spacer && l.Chords == "" && l.Lyrics == ""
}
