package pipeline

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Formats understood by Load.
const (
	FormatHexLines = "hex-lines"
	FormatRaw      = "raw"
)

// RawBlock is one [era_tag, block] envelope and where it was read from.
type RawBlock struct {
	Name string
	Data []byte
}

// Load reads blocks from path. hex-lines reads one hex encoded envelope per
// line, "-" meaning stdin. raw reads a single file, or every .cbor file of a
// directory in name order.
func Load(path, format string) ([]RawBlock, error) {
	switch format {
	case "", FormatHexLines:
		if path == "-" {
			return ReadHexLines(os.Stdin, "stdin")
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadHexLines(f, path)
	case FormatRaw:
		return readRaw(path)
	}
	return nil, fmt.Errorf("unknown input format: %s", format)
}

// ReadHexLines reads one envelope per line. Blank lines and lines starting
// with # are skipped.
func ReadHexLines(r io.Reader, name string) ([]RawBlock, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 256*1024*1024)

	var blocks []RawBlock
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		data, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: decode hex: %w", name, line, err)
		}
		blocks = append(blocks, RawBlock{Name: fmt.Sprintf("%s:%d", name, line), Data: data})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return blocks, nil
}

func readRaw(path string) ([]RawBlock, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return []RawBlock{{Name: path, Data: data}}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.cbor"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	blocks := make([]RawBlock, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, RawBlock{Name: file, Data: data})
	}
	return blocks, nil
}
