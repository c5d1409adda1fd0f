package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ChartFile is the song-level content of a Clone Hero .chart file. Note
// tracks are skipped; only metadata, tempo and global events are kept.
type ChartFile struct {
	Song      SongSection
	SyncTrack SyncTrackSection
	Events    EventsSection
}

type SongSection struct {
	Name       string
	Artist     string
	Charter    string
	Album      string
	Year       string
	Genre      string
	Resolution int // ticks per quarter note
}

// chartDefaultResolution is used when a chart omits or garbles Resolution
const chartDefaultResolution = 192

type SyncTrackSection struct {
	BPMEvents []BPMEvent
}

type BPMEvent struct {
	Tick uint32
	BPM  uint32 // BPM * 1000
}

type EventsSection struct {
	GlobalEvents []GlobalEvent
}

type GlobalEvent struct {
	Tick uint32
	Text string
}

func OpenChartFile(filename string) (*ChartFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening chart file: %w", err)
	}
	defer file.Close()

	chart, err := ParseChartFile(file)
	if err != nil {
		return nil, fmt.Errorf("error parsing chart file: %w", err)
	}

	return chart, nil
}

func ParseChartFile(reader io.Reader) (*ChartFile, error) {
	chart := &ChartFile{}

	scanner := bufio.NewScanner(reader)
	var currentSection string
	var inSection bool
	var sawSection bool

	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = line[1 : len(line)-1]
			if strings.TrimSpace(currentSection) == "" {
				return nil, fmt.Errorf("empty section name at line: %s", line)
			}
			sawSection = true
			inSection = false
			continue
		}

		switch line {
		case "{":
			inSection = true
			continue
		case "}":
			inSection = false
			currentSection = ""
			continue
		}

		if !inSection {
			continue
		}

		var err error
		switch currentSection {
		case "Song":
			parseSongLine(chart, line)
		case "SyncTrack":
			err = parseSyncTrackLine(chart, line)
		case "Events":
			err = parseEventsLine(chart, line)
		}
		if err != nil {
			return nil, fmt.Errorf("error parsing line '%s' in section '%s': %w", line, currentSection, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading chart file: %w", err)
	}

	if !sawSection {
		return nil, fmt.Errorf("no sections found")
	}

	return chart, nil
}

// splitChartLine splits "key = value" and reports whether both sides exist
func splitChartLine(line string) (string, string, bool) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

func parseSongLine(chart *ChartFile, line string) {
	key, value, ok := splitChartLine(line)
	if !ok {
		return // malformed lines are skipped
	}
	value = unquoteString(value)

	switch key {
	case "Name":
		chart.Song.Name = value
	case "Artist":
		chart.Song.Artist = value
	case "Charter":
		chart.Song.Charter = value
	case "Album":
		chart.Song.Album = value
	case "Year":
		chart.Song.Year = strings.TrimSpace(strings.TrimPrefix(value, ","))
	case "Genre":
		chart.Song.Genre = value
	case "Resolution":
		if val, err := strconv.Atoi(value); err == nil {
			chart.Song.Resolution = val
		}
	}
}

func parseSyncTrackLine(chart *ChartFile, line string) error {
	tickStr, event, ok := splitChartLine(line)
	if !ok {
		return nil
	}

	tick, err := strconv.ParseUint(tickStr, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid tick value '%s': %w", tickStr, err)
	}

	eventParts := strings.Fields(event)
	if len(eventParts) < 2 || eventParts[0] != "B" {
		return nil
	}

	if bpm, err := strconv.ParseUint(eventParts[1], 10, 32); err == nil {
		chart.SyncTrack.BPMEvents = append(chart.SyncTrack.BPMEvents, BPMEvent{
			Tick: uint32(tick),
			BPM:  uint32(bpm),
		})
	}

	return nil
}

func parseEventsLine(chart *ChartFile, line string) error {
	tickStr, event, ok := splitChartLine(line)
	if !ok {
		return nil
	}

	tick, err := strconv.ParseUint(tickStr, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid tick value '%s': %w", tickStr, err)
	}

	eventParts := strings.Fields(event)
	if len(eventParts) < 2 || eventParts[0] != "E" {
		return nil
	}

	text := unquoteString(strings.Join(eventParts[1:], " "))
	chart.Events.GlobalEvents = append(chart.Events.GlobalEvents, GlobalEvent{
		Tick: uint32(tick),
		Text: text,
	})

	return nil
}

// unquoteString strips surrounding quotes and resolves \" \\ \n \t escapes
func unquoteString(value string) string {
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return value
	}
	if unquoted, err := strconv.Unquote(value); err == nil {
		return unquoted
	}
	return value[1 : len(value)-1]
}

func (c *ChartFile) GetMetadata() map[string]string {
	result := map[string]string{
		"name":    c.Song.Name,
		"artist":  c.Song.Artist,
		"album":   c.Song.Album,
		"year":    c.Song.Year,
		"charter": c.Song.Charter,
		"genre":   c.Song.Genre,
	}

	if len(c.SyncTrack.BPMEvents) > 0 {
		bpm := float64(c.SyncTrack.BPMEvents[0].BPM) / 1000.0
		result["bpm"] = strconv.FormatFloat(bpm, 'f', -1, 64)
	}

	for key, value := range result {
		if value == "" {
			delete(result, key)
		}
	}
	return result
}

// grid lays out bars of four quarter notes at the chart resolution
func (c *ChartFile) grid() fixedGrid {
	resolution := c.Song.Resolution
	if resolution <= 0 || resolution > math.MaxUint32/4 {
		resolution = chartDefaultResolution
	}
	return fixedGrid{ticksPerMeasure: uint32(4 * resolution)}
}

// GetSheet turns the global events into lyric rows: "section" events start
// a section and each phrase_start/phrase_end run becomes one row. Whole
// bars with no lyrics between two rows become blank rows.
func (c *ChartFile) GetSheet() (string, error) {
	grid := c.grid()
	w := &sheetWriter{}
	var syllables []string
	var found int
	firstBar, lastBar := -1, -1 // bars of the open row's syllables
	last := -1                  // last bar written in this section

	gapTo := func(bar int) {
		if last < 0 {
			return
		}
		for gap := last + 1; gap < bar; gap++ {
			w.blank()
		}
	}

	flush := func() {
		if len(syllables) > 0 {
			gapTo(firstBar)
			w.line(nil, joinLyricSyllables(syllables))
			last = lastBar
		}
		syllables = nil
	}

	for _, event := range c.Events.GlobalEvents {
		switch {
		case strings.HasPrefix(event.Text, "lyric "):
			lastBar, _ = grid.Locate(event.Tick)
			if len(syllables) == 0 {
				firstBar = lastBar
			}
			syllables = append(syllables, strings.TrimPrefix(event.Text, "lyric "))
			found++
		case event.Text == "phrase_start", event.Text == "phrase_end":
			flush()
		default:
			if name, ok := sectionFromEventText(event.Text); ok {
				flush()
				bar, _ := grid.Locate(event.Tick)
				gapTo(bar)
				w.section(name)
				last = -1
				found++
			}
		}
	}
	flush()

	if found == 0 {
		return "", fmt.Errorf("no section or lyric events found")
	}

	log.Infof("read %d section and lyric events from chart", found)
	return w.String(), nil
}
