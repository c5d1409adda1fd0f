package main

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Rock Band BEAT track keys
const (
	beatDownbeatKey uint8 = 12 // C-1
	beatUpbeatKey   uint8 = 13 // C#-1
)

// BeatNote represents a beat event from the BEAT track
type BeatNote struct {
	Time       uint32 // Absolute time in ticks
	IsDownbeat bool
}

// Measure is one bar of the song in absolute ticks
type Measure struct {
	StartTime       uint32
	EndTime         uint32
	BeatsPerMeasure int
}

// Timeline is the bar layout of a song as marked by its BEAT track
type Timeline struct {
	Measures  []Measure
	BeatNotes []BeatNote
}

// measureGrid maps an absolute tick to the bar that contains it and the
// position inside that bar as a fraction in [0, 1).
type measureGrid interface {
	Locate(time uint32) (int, float64)
}

// fixedGrid lays out bars of equal length from tick zero
type fixedGrid struct {
	ticksPerMeasure uint32
}

func (g fixedGrid) Locate(time uint32) (int, float64) {
	if g.ticksPerMeasure == 0 {
		return 0, 0
	}
	index := int(time / g.ticksPerMeasure)
	offset := time % g.ticksPerMeasure
	return index, float64(offset) / float64(g.ticksPerMeasure)
}

// ExtractBeatTimeline analyzes the BEAT track and creates a timeline with measure information
func ExtractBeatTimeline(smfData *smf.SMF) (*Timeline, error) {
	var beatTrack smf.Track
	var found bool

	for _, track := range smfData.Tracks {
		if getTrackName(track) == "BEAT" {
			beatTrack = track
			found = true
			break
		}
	}

	if !found {
		return nil, fmt.Errorf("BEAT track not found")
	}

	ticksPerQuarter, ok := smfData.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format, expected MetricTicks")
	}

	beatNotes := extractBeatNotes(beatTrack)
	if len(beatNotes) == 0 {
		return nil, fmt.Errorf("no beat notes found in BEAT track")
	}

	measures := createMeasuresFromBeats(beatNotes, float64(ticksPerQuarter))
	if len(measures) == 0 {
		return nil, fmt.Errorf("no downbeats found in BEAT track")
	}

	return &Timeline{
		Measures:  measures,
		BeatNotes: beatNotes,
	}, nil
}

// extractBeatNotes extracts beat events from the BEAT track
func extractBeatNotes(beatTrack smf.Track) []BeatNote {
	var beatNotes []BeatNote
	var currentTime uint32

	for _, event := range beatTrack {
		currentTime += event.Delta

		var ch, key, vel uint8
		if !event.Message.GetNoteOn(&ch, &key, &vel) || vel == 0 {
			continue
		}

		switch key {
		case beatDownbeatKey:
			beatNotes = append(beatNotes, BeatNote{Time: currentTime, IsDownbeat: true})
		case beatUpbeatKey:
			beatNotes = append(beatNotes, BeatNote{Time: currentTime})
		default:
			log.Debugf("ignoring BEAT note %d at tick %d", key, currentTime)
		}
	}

	sort.Slice(beatNotes, func(i, j int) bool {
		return beatNotes[i].Time < beatNotes[j].Time
	})

	return beatNotes
}

// createMeasuresFromBeats groups beats into measures starting at each downbeat
func createMeasuresFromBeats(beatNotes []BeatNote, ticksPerQuarter float64) []Measure {
	var measureStarts []int
	for i, beat := range beatNotes {
		if beat.IsDownbeat {
			measureStarts = append(measureStarts, i)
		}
	}

	measures := make([]Measure, 0, len(measureStarts))
	for i, startIdx := range measureStarts {
		endIdx := len(beatNotes)
		if i+1 < len(measureStarts) {
			endIdx = measureStarts[i+1]
		}

		beatsInMeasure := endIdx - startIdx
		startTime := beatNotes[startIdx].Time

		var endTime uint32
		switch {
		case endIdx < len(beatNotes):
			endTime = beatNotes[endIdx].Time
		case beatsInMeasure > 1:
			// last measure: extend by the average beat length
			span := beatNotes[endIdx-1].Time - startTime
			endTime = startTime + span*uint32(beatsInMeasure)/uint32(beatsInMeasure-1)
		default:
			endTime = startTime + uint32(ticksPerQuarter)
		}

		measures = append(measures, Measure{
			StartTime:       startTime,
			EndTime:         endTime,
			BeatsPerMeasure: beatsInMeasure,
		})
	}

	return measures
}

// Locate implements measureGrid. Times before the first downbeat belong to
// measure 0; times past the end continue with the length of the last bar.
func (t *Timeline) Locate(time uint32) (int, float64) {
	if len(t.Measures) == 0 {
		return 0, 0
	}

	for i, measure := range t.Measures {
		if time < measure.EndTime {
			if time < measure.StartTime {
				return i, 0
			}
			length := measure.EndTime - measure.StartTime
			return i, float64(time-measure.StartTime) / float64(length)
		}
	}

	last := t.Measures[len(t.Measures)-1]
	tail := fixedGrid{ticksPerMeasure: last.EndTime - last.StartTime}
	index, frac := tail.Locate(time - last.EndTime)
	return len(t.Measures) + index, frac
}

// String returns a string representation of the timeline
func (t *Timeline) String() string {
	result := fmt.Sprintf("Timeline: %d measures, %d beat notes\n", len(t.Measures), len(t.BeatNotes))
	for i, measure := range t.Measures {
		result += fmt.Sprintf("Measure %d: %d beats, ticks %d-%d\n",
			i+1, measure.BeatsPerMeasure, measure.StartTime, measure.EndTime)
	}
	return result
}
