// SNG files are binary song packages used by rhythm games. A package holds
// a chart (notes.chart or notes.mid), audio stems, art and song.ini style
// metadata.
//
// Layout:
//   - Header: "SNGPKG", version, 16-byte XOR mask
//   - Metadata: count-prefixed key/value pairs
//   - File index: name, size and absolute offset of each contained file
//   - File data: contents masked with the header's XOR mask
//
// Only what the chord-sheet importer needs is read: the metadata and the
// chart file.
package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// SngFileIdentifier is the magic bytes that identify an SNG file
	SngFileIdentifier = "SNGPKG"

	maxSngKeyLength   = 1024
	maxSngValueLength = 10240
)

// SngHeader represents the SNG file header containing identification and XOR mask
type SngHeader struct {
	Identifier [6]byte
	Version    uint32
	XorMask    [16]byte
}

// SngFileEntry represents a file contained within the SNG package
type SngFileEntry struct {
	Filename string
	Size     uint64
	Offset   uint64 // absolute offset within the package
}

// SngFile is an SNG package opened for reading
type SngFile struct {
	Header   SngHeader
	Metadata map[string]string
	Files    []SngFileEntry
	reader   io.ReadSeeker
	closer   io.Closer
	size     uint64
}

// OpenSngFile opens an SNG file from disk. The returned SngFile must be
// closed with Close() when finished.
func OpenSngFile(filename string) (*SngFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	sng, err := ReadSngFile(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	sng.closer = file
	return sng, nil
}

// ReadSngFile parses the header, metadata and file index of an SNG package.
// Index entries reaching past the end of the package are rejected.
func ReadSngFile(reader io.ReadSeeker) (*SngFile, error) {
	end, err := reader.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to size package: %w", err)
	}

	sng := &SngFile{
		reader:   reader,
		Metadata: make(map[string]string),
		size:     uint64(end),
	}

	if err := sng.readHeader(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := sng.readMetadata(); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := sng.readFileIndex(); err != nil {
		return nil, fmt.Errorf("failed to read file index: %w", err)
	}

	return sng, nil
}

func (s *SngFile) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *SngFile) readHeader() error {
	if _, err := s.reader.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Read(s.reader, binary.LittleEndian, &s.Header); err != nil {
		return err
	}
	if string(s.Header.Identifier[:]) != SngFileIdentifier {
		return fmt.Errorf("invalid file identifier: %q", string(s.Header.Identifier[:]))
	}
	return nil
}

// readLengthPrefixed reads an int32 length followed by that many bytes
func (s *SngFile) readLengthPrefixed(limit int32) (string, error) {
	var length int32
	if err := binary.Read(s.reader, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	if length < 0 || length > limit {
		return "", fmt.Errorf("invalid length: %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (s *SngFile) readMetadata() error {
	// section byte length, then pair count
	var sectionLength, count uint64
	if err := binary.Read(s.reader, binary.LittleEndian, &sectionLength); err != nil {
		return err
	}
	if err := binary.Read(s.reader, binary.LittleEndian, &count); err != nil {
		return err
	}

	for i := uint64(0); i < count; i++ {
		key, err := s.readLengthPrefixed(maxSngKeyLength)
		if err != nil {
			return fmt.Errorf("metadata key %d: %w", i, err)
		}
		value, err := s.readLengthPrefixed(maxSngValueLength)
		if err != nil {
			return fmt.Errorf("metadata value for %q: %w", key, err)
		}
		s.Metadata[key] = value
	}

	return nil
}

func (s *SngFile) readFileIndex() error {
	var sectionLength, count uint64
	if err := binary.Read(s.reader, binary.LittleEndian, &sectionLength); err != nil {
		return err
	}
	if err := binary.Read(s.reader, binary.LittleEndian, &count); err != nil {
		return err
	}

	for i := uint64(0); i < count; i++ {
		var nameLength uint8
		if err := binary.Read(s.reader, binary.LittleEndian, &nameLength); err != nil {
			return err
		}
		name := make([]byte, nameLength)
		if _, err := io.ReadFull(s.reader, name); err != nil {
			return err
		}

		entry := SngFileEntry{Filename: string(name)}
		if err := binary.Read(s.reader, binary.LittleEndian, &entry.Size); err != nil {
			return err
		}
		if err := binary.Read(s.reader, binary.LittleEndian, &entry.Offset); err != nil {
			return err
		}
		if entry.Offset > s.size || entry.Size > s.size-entry.Offset {
			return fmt.Errorf("file %q out of bounds: %d bytes at offset %d in a %d byte package",
				entry.Filename, entry.Size, entry.Offset, s.size)
		}
		s.Files = append(s.Files, entry)
	}

	return nil
}

// ListFiles returns the names of the contained files in index order
func (s *SngFile) ListFiles() []string {
	files := make([]string, len(s.Files))
	for i, entry := range s.Files {
		files[i] = entry.Filename
	}
	return files
}

// ReadFile returns the unmasked contents of a contained file
func (s *SngFile) ReadFile(filename string) ([]byte, error) {
	for _, entry := range s.Files {
		if entry.Filename != filename {
			continue
		}

		if _, err := s.reader.Seek(int64(entry.Offset), io.SeekStart); err != nil {
			return nil, err
		}
		data := make([]byte, entry.Size)
		if _, err := io.ReadFull(s.reader, data); err != nil {
			return nil, err
		}
		s.maskData(data)
		return data, nil
	}

	return nil, fmt.Errorf("file not found: %s", filename)
}

// maskData applies the package XOR mask in place. Masking is its own
// inverse, so the same call masks and unmasks.
func (s *SngFile) maskData(data []byte) {
	for i := range data {
		position := byte(i)
		data[i] ^= position ^ s.Header.XorMask[i&0x0F]
	}
}

func (s *SngFile) GetMetadata() map[string]string {
	result := make(map[string]string)

	if inner, err := s.chartSource(); err == nil {
		for k, v := range inner.GetMetadata() {
			result[k] = v
		}
	}
	for k, v := range s.Metadata {
		if v != "" {
			result[k] = v
		}
	}

	return result
}

// GetSheet reads the chord sheet of the contained chart
func (s *SngFile) GetSheet() (string, error) {
	inner, err := s.chartSource()
	if err != nil {
		return "", err
	}
	return inner.GetSheet()
}

// findFile returns the stored name of the contained file matching name
// case-insensitively
func (s *SngFile) findFile(name string) (string, bool) {
	for _, filename := range s.ListFiles() {
		if strings.EqualFold(filename, name) {
			return filename, true
		}
	}
	return "", false
}

// chartSource opens notes.chart, falling back to notes.mid
func (s *SngFile) chartSource() (SongSource, error) {
	if name, ok := s.findFile("notes.chart"); ok {
		data, err := s.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", name, err)
		}
		chart, err := ParseChartFile(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", name, err)
		}
		return chart, nil
	}

	name, ok := s.findFile("notes.mid")
	if !ok {
		return nil, fmt.Errorf("no chart found in SNG package (files: %s)", strings.Join(s.ListFiles(), ", "))
	}
	data, err := s.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	midiFile, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	return &MidiFile{SMF: midiFile}, nil
}
