// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xmlrepair

import (
	"bytes"
	"fmt"
	"path"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Hit records how many sites one rule rewrote.
type Hit struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// Result is the outcome of a repair pass.
type Result struct {
	// Content is the repaired document, always UTF-8.
	Content []byte

	// Hits lists the rules that matched, in application order. Rules
	// that found nothing are omitted.
	Hits []Hit

	// Latin1 is set when the input was not valid UTF-8 and was decoded
	// as ISO-8859-1.
	Latin1 bool
}

// Changed reports whether Content differs from the input bytes.
func (r Result) Changed() bool {
	return len(r.Hits) > 0 || r.Latin1
}

// Count returns the number of sites the named rule rewrote.
func (r Result) Count(rule string) int {
	for _, hit := range r.Hits {
		if hit.Rule == rule {
			return hit.Count
		}
	}
	return 0
}

// Total returns the number of sites rewritten by all rules.
func (r Result) Total() int {
	total := 0
	for _, hit := range r.Hits {
		total += hit.Count
	}
	return total
}

// Repair applies every rule in the table, in order, once each.
func Repair(content []byte) Result {
	return RepairWith(content, rules)
}

// RepairWith applies the given rules, in order, once each.
func RepairWith(content []byte, ruleset []Rule) Result {
	text, latin1 := decode(content)
	var hits []Hit
	for _, rule := range ruleset {
		repaired, count := rule.apply(text)
		if count == 0 {
			continue
		}
		text = repaired
		hits = append(hits, Hit{Rule: rule.Name, Count: count})
	}
	return Result{Content: []byte(text), Hits: hits, Latin1: latin1}
}

// Select returns the rule table without the named rules. Naming a rule
// that does not exist is an error, so a typo in configuration cannot
// silently leave a repair enabled.
func Select(disabled []string) ([]Rule, error) {
	for _, name := range disabled {
		if !slices.ContainsFunc(rules, func(rule Rule) bool { return rule.Name == name }) {
			return nil, fmt.Errorf("xmlrepair: unknown rule %q", name)
		}
	}
	selected := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if !slices.Contains(disabled, rule.Name) {
			selected = append(selected, rule)
		}
	}
	return selected, nil
}

func decode(content []byte) (string, bool) {
	if utf8.Valid(content) {
		return string(content), false
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return strings.ToValidUTF8(string(content), string(utf8.RuneError)), false
	}
	return string(decoded), true
}

// IsXML reports whether an entry should go through the repair pass:
// a .gpif or .xml name, or content that opens like an XML document.
func IsXML(name string, content []byte) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".gpif", ".xml":
		return true
	}
	trimmed := bytes.TrimPrefix(content, []byte("\xEF\xBB\xBF"))
	trimmed = bytes.TrimLeft(trimmed, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		return true
	}
	return len(trimmed) > 1 && trimmed[0] == '<' && isNameStart(trimmed[1])
}
