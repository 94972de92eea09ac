package datfile

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"romdex/internal/catalog"
	"romdex/internal/fingerprint"
)

// ErrNoEntries is returned when a catalog parses cleanly but declares no dumps.
var ErrNoEntries = errors.New("catalog contains no entries")

// Header carries catalog-level metadata from the <header> block.
type Header struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Version     string `xml:"version"`
	Author      string `xml:"author"`
}

type xmlRom struct {
	Name   string `xml:"name,attr"`
	Size   int64  `xml:"size,attr"`
	CRC    string `xml:"crc,attr"`
	MD5    string `xml:"md5,attr"`
	SHA1   string `xml:"sha1,attr"`
	Status string `xml:"status,attr"`
}

type xmlRelease struct {
	Region   string `xml:"region,attr"`
	Language string `xml:"language,attr"`
}

type xmlGame struct {
	Name     string       `xml:"name,attr"`
	CloneOf  string       `xml:"cloneof,attr"`
	Releases []xmlRelease `xml:"release"`
	Roms     []xmlRom     `xml:"rom"`
}

// Parse reads a Logiqx-dialect XML catalog and returns its header plus one
// catalog entry per declared dump, Seq numbered in document order. The
// decoder streams game elements so multi-hundred-megabyte catalogs never
// load whole.
func Parse(r io.Reader) (Header, []catalog.Entry, error) {
	decoder := xml.NewDecoder(r)

	var header Header
	var entries []catalog.Entry
	seq := 0

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Header{}, nil, fmt.Errorf("parse catalog: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "header":
			if err := decoder.DecodeElement(&header, &start); err != nil {
				return Header{}, nil, fmt.Errorf("parse catalog header: %w", err)
			}
		case "game", "machine":
			var game xmlGame
			if err := decoder.DecodeElement(&game, &start); err != nil {
				return Header{}, nil, fmt.Errorf("parse game element: %w", err)
			}
			entries = appendGameEntries(entries, game, &seq)
		}
	}

	if len(entries) == 0 {
		return header, nil, ErrNoEntries
	}
	return header, entries, nil
}

// ParseFile parses the catalog at path.
func ParseFile(path string) (Header, []catalog.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

func appendGameEntries(entries []catalog.Entry, game xmlGame, seq *int) []catalog.Entry {
	regions, languages := releaseTags(game)

	for _, rom := range game.Roms {
		status := strings.ToLower(strings.TrimSpace(rom.Status))
		entry := catalog.Entry{
			Seq:    *seq,
			Name:   rom.Name,
			Title:  game.Name,
			Parent: strings.TrimSpace(game.CloneOf),
			Fingerprint: fingerprint.Fingerprint{
				Size:  rom.Size,
				CRC32: rom.CRC,
				MD5:   rom.MD5,
				SHA1:  rom.SHA1,
			},
			NoDump:    status == "nodump",
			BadDump:   status == "baddump",
			Verified:  status == "verified",
			Regions:   regions,
			Languages: languages,
		}
		entry.Fingerprint.Normalize()
		entries = append(entries, entry)
		*seq++
	}
	return entries
}

// releaseTags collects region and language tags from <release> elements,
// falling back to parenthesized tokens in the game name for catalogs that
// omit release blocks (the usual No-Intro convention).
func releaseTags(game xmlGame) ([]string, []string) {
	var regions, languages []string
	for _, release := range game.Releases {
		if region := strings.TrimSpace(release.Region); region != "" {
			regions = appendUnique(regions, region)
		}
		for _, lang := range splitList(release.Language) {
			languages = appendUnique(languages, lang)
		}
	}
	if len(regions) == 0 {
		regions = nameTags(game.Name)
	}
	return regions, languages
}

// nameTags extracts "(USA)" style tokens from a game name, splitting
// comma-separated groups like "(USA, Europe)".
func nameTags(name string) []string {
	var tags []string
	for {
		open := strings.IndexByte(name, '(')
		if open < 0 {
			break
		}
		close := strings.IndexByte(name[open:], ')')
		if close < 0 {
			break
		}
		inner := name[open+1 : open+close]
		for _, token := range splitList(inner) {
			tags = appendUnique(tags, token)
		}
		name = name[open+close+1:]
	}
	return tags
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, value) {
			return list
		}
	}
	return append(list, value)
}
