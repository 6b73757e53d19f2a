// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xmlrepair

import (
	"regexp"
	"strings"
)

// Rule is one discrete repair. Apply performs a single forward pass
// and reports how many sites it rewrote.
type Rule struct {
	// Name is a stable kebab-case identifier used in reports and
	// configuration.
	Name string

	Description string

	apply func(text string) (string, int)
}

// Apply runs the rule once over text.
func (r Rule) Apply(text string) (string, int) {
	return r.apply(text)
}

// rules is the repair table, in application order. Append only.
var rules = []Rule{
	{
		Name:        "trailing-nul-padding",
		Description: "strip NUL bytes left after the document by sector padding",
		apply:       stripTrailingNULs,
	},
	literalRule(
		"truncated-parameters-close",
		"close <Parameters> elements that were truncated to </Params>",
		"</Params>", "</Parameters>",
	),
	{
		Name:        "doubled-tag-name",
		Description: "collapse tag names written twice, such as <BarBar> or </BarBar>",
		apply:       collapseDoubledTagNames,
	},
	literalRule(
		"cdata-missing-bang",
		"restore the ! in CDATA openers written as <[CDATA[",
		"<[CDATA[", "<![CDATA[",
	),
	regexpRule(
		"cdata-missing-bracket",
		"restore the [ in CDATA openers written as <![CDATA followed by text",
		regexp.MustCompile(`<!\[CDATA([^\[])`), "<![CDATA[${1}",
	),
	{
		Name:        "bare-boolean-attribute",
		Description: `give valueless attributes such as accent"/> or accent/> the value "true"`,
		apply:       fillBareAttributes,
	},
}

// Rules returns a copy of the repair table in application order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

func literalRule(name, description, find, replace string) Rule {
	return Rule{
		Name:        name,
		Description: description,
		apply: func(text string) (string, int) {
			count := strings.Count(text, find)
			if count == 0 {
				return text, 0
			}
			return strings.ReplaceAll(text, find, replace), count
		},
	}
}

func regexpRule(name, description string, pattern *regexp.Regexp, replace string) Rule {
	return Rule{
		Name:        name,
		Description: description,
		apply: func(text string) (string, int) {
			count := len(pattern.FindAllStringIndex(text, -1))
			if count == 0 {
				return text, 0
			}
			return pattern.ReplaceAllString(text, replace), count
		},
	}
}

func stripTrailingNULs(text string) (string, int) {
	trimmed := strings.TrimRight(text, "\x00")
	if len(trimmed) == len(text) {
		return text, 0
	}
	return trimmed, 1
}

var tagNamePattern = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9]*)`)

// collapseDoubledTagNames rewrites <NameName to <Name when both halves
// are identical and start with an upper-case letter, the shape every
// element name in a score uses.
func collapseDoubledTagNames(text string) (string, int) {
	count := 0
	repaired := tagNamePattern.ReplaceAllStringFunc(text, func(match string) string {
		slash := ""
		name := match[1:]
		if strings.HasPrefix(name, "/") {
			slash, name = "/", name[1:]
		}
		half := len(name) / 2
		if len(name)%2 != 0 || half < 2 || name[:half] != name[half:] {
			return match
		}
		if name[0] < 'A' || name[0] > 'Z' {
			return match
		}
		count++
		return "<" + slash + name[:half]
	})
	return repaired, count
}
