package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// readInput reads the named file, or stdin for no argument or "-"
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(value)
}

// decodeSongs decodes a song record, a wrapped {"song": ...} payload or an
// array of records
func decodeSongs(data []byte) ([]Song, bool, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decode JSON: %w", err)
	}

	switch v := payload.(type) {
	case map[string]any:
		return []Song{NormalizeSong(UnwrapSongPayload(v), "")}, false, nil
	case []any:
		return NormalizeSongs(v), true, nil
	}
	return nil, false, fmt.Errorf("expected a JSON object or array, got %T", payload)
}

func newParseCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Split a chord sheet into sections",
		Long: `Parse chord-sheet text into labelled sections of chord and lyric lines.

Reads from stdin when no file (or "-") is given. The default output is
JSON; --format text prints the sheet back in canonical form.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}

			sections := ParseChordSheet(string(data))
			log.Debugf("parsed %d sections", len(sections))

			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), sections)
			case "text":
				_, err = fmt.Fprint(cmd.OutOrStdout(), FormatChordSheet(sections))
				return err
			}
			return fmt.Errorf("unknown format %q, expected json or text", format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or text")

	return cmd
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize song records into canonical songs",
		Long: `Normalize a JSON song record into the canonical song shape.

Accepts a single record, a {"song": {...}} service payload, or an array of
records (a saved bookmark list). Reads from stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}

			songs, isList, err := decodeSongs(data)
			if err != nil {
				return err
			}

			if isList {
				log.Infof("normalized %d songs", len(songs))
				return writeJSON(cmd.OutOrStdout(), songs)
			}
			return writeJSON(cmd.OutOrStdout(), songs[0])
		},
	}
}

func newTokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize <line>",
		Short: "Split a chord line into word and whitespace runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), TokenizeChordLine(args[0]))
		},
	}
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <token|line>...",
		Short: "Report whether each argument is a chord, a chord line or lyrics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				kind := "lyrics"
				switch {
				case IsChordToken(strings.TrimSpace(arg)):
					kind = "chord"
				case IsChordLine(arg):
					kind = "chords"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", kind, arg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a chart, MIDI, SNG or text file as a song",
		Long: `Import a song file and print it as a normalized song.

Supported inputs are Clone Hero .chart files, MIDI files (.mid, .midi),
SNG packages (.sng) and plain chord-sheet text (anything else).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			song, err := ImportSong(args[0])
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), song)
			case "text":
				_, err = fmt.Fprint(cmd.OutOrStdout(), FormatChordSheet(song.Sections))
				return err
			}
			return fmt.Errorf("unknown format %q, expected json or text", format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or text")

	return cmd
}

func newExportMidiCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-midi <song.json>",
		Short: "Write a song as a chord-sheet MIDI file",
		Long: `Write a song record as a MIDI file of markers, chord text events and
lyric events, one bar per line.

The output defaults to the input name with a .mid extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args)
			if err != nil {
				return err
			}

			songs, isList, err := decodeSongs(data)
			if err != nil {
				return err
			}
			if isList {
				return fmt.Errorf("expected a single song, got a list of %d", len(songs))
			}

			if output == "" {
				if args[0] == "-" {
					return fmt.Errorf("-o is required when reading from stdin")
				}
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".mid"
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer file.Close()

			if err := ExportSongMidi(songs[0], file); err != nil {
				return fmt.Errorf("export %s: %w", output, err)
			}

			log.Infof("wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output MIDI file")

	return cmd
}
