// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package beatfile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

// File is the content of a beat file. Fields other than Beats are zero
// when the file does not provide them.
type File struct {
	Beats       []float64 `json:"beats"`
	TempoBPM    float64   `json:"tempo,omitempty"`
	BeatsPerBar int       `json:"beats_per_bar,omitempty"`
	BarCount    int       `json:"bars,omitempty"`
}

// ParseError locates a bad line in a text beat file.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadFile reads and parses a beat file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Parse decodes a text or JSON/JSONC beat file. The format is chosen by
// the first character after leading whitespace and comments.
func Parse(data []byte) (*File, error) {
	stripped := jsonc.ToJSON(bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF")))
	trimmed := bytes.TrimLeft(stripped, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return parseJSON(trimmed)
	}
	return parseText(data)
}

func parseJSON(data []byte) (*File, error) {
	if data[0] == '[' {
		var beats []float64
		if err := json.Unmarshal(data, &beats); err != nil {
			return nil, fmt.Errorf("parsing beat array: %w", err)
		}
		return &File{Beats: beats}, nil
	}

	var file File
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing beat object: %w", err)
	}
	if file.Beats == nil {
		return nil, fmt.Errorf("parsing beat object: missing \"beats\"")
	}
	return &file, nil
}

func parseText(data []byte) (*File, error) {
	file := &File{Beats: []float64{}}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if comment := strings.IndexByte(text, '#'); comment >= 0 {
			text = text[:comment]
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\r'
		})
		if len(fields) == 0 {
			continue
		}
		value, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, &ParseError{Line: line, Text: fields[0], Err: err}
		}
		file.Beats = append(file.Beats, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return file, nil
}
