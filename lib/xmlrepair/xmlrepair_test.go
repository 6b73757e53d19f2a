// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xmlrepair

import (
	"slices"
	"testing"
)

func ruleNamed(t *testing.T, name string) Rule {
	t.Helper()
	for _, rule := range Rules() {
		if rule.Name == name {
			return rule
		}
	}
	t.Fatalf("no rule named %q", name)
	return Rule{}
}

func TestRuleOrder(t *testing.T) {
	var names []string
	for _, rule := range Rules() {
		names = append(names, rule.Name)
		if rule.Description == "" {
			t.Errorf("rule %q has no description", rule.Name)
		}
	}
	want := []string{
		"trailing-nul-padding",
		"truncated-parameters-close",
		"doubled-tag-name",
		"cdata-missing-bang",
		"cdata-missing-bracket",
		"bare-boolean-attribute",
	}
	if !slices.Equal(names, want) {
		t.Errorf("rule order = %v, want %v", names, want)
	}
}

func TestRules(t *testing.T) {
	tests := []struct {
		rule  string
		name  string
		input string
		want  string
		count int
	}{
		{"trailing-nul-padding", "strips padding", "<a/>\x00\x00\x00", "<a/>", 1},
		{"trailing-nul-padding", "keeps interior nul", "<a>\x00</a>", "<a>\x00</a>", 0},

		{"truncated-parameters-close", "fixes close", "<Parameters>1 2</Params>", "<Parameters>1 2</Parameters>", 1},
		{"truncated-parameters-close", "every site", "</Params></Params>", "</Parameters></Parameters>", 2},
		{"truncated-parameters-close", "leaves correct close", "<Parameters/></Parameters>", "<Parameters/></Parameters>", 0},

		{"doubled-tag-name", "open and close", "<BarBar>1</BarBar>", "<Bar>1</Bar>", 2},
		{"doubled-tag-name", "with attributes", `<NoteNote id="1">`, `<Note id="1">`, 1},
		{"doubled-tag-name", "distinct halves", "<Voices>0</Voices>", "<Voices>0</Voices>", 0},
		{"doubled-tag-name", "single letter halves", "<TT/>", "<TT/>", 0},
		{"doubled-tag-name", "lower case", "<barbar/>", "<barbar/>", 0},
		{"doubled-tag-name", "text is not a tag", "BarBar", "BarBar", 0},

		{"cdata-missing-bang", "restores bang", "<Name><[CDATA[Lead]]></Name>", "<Name><![CDATA[Lead]]></Name>", 1},
		{"cdata-missing-bang", "intact", "<![CDATA[x]]>", "<![CDATA[x]]>", 0},

		{"cdata-missing-bracket", "restores bracket", "<Name><![CDATALead]]></Name>", "<Name><![CDATA[Lead]]></Name>", 1},
		{"cdata-missing-bracket", "intact", "<![CDATA[x]]>", "<![CDATA[x]]>", 0},

		{"bare-boolean-attribute", "stray quote before close", `<Accidental natural"/>`, `<Accidental natural="true"/>`, 1},
		{"bare-boolean-attribute", "stray quote before space", `<Note accent" tie="x">`, `<Note accent="true" tie="x">`, 1},
		{"bare-boolean-attribute", "bare name", `<Note accent/>`, `<Note accent="true"/>`, 1},
		{"bare-boolean-attribute", "two bare names", `<X a b/>`, `<X a="true" b="true"/>`, 2},
		{"bare-boolean-attribute", "space inside quoted value", `<Property name="a y" />`, `<Property name="a y" />`, 0},
		{"bare-boolean-attribute", "single quoted value", `<P v='x" y'/>`, `<P v='x" y'/>`, 0},
		{"bare-boolean-attribute", "spaces around equals", `<P v = "1"/>`, `<P v = "1"/>`, 0},
		{"bare-boolean-attribute", "cdata untouched", `<![CDATA[<a b"/>]]>`, `<![CDATA[<a b"/>]]>`, 0},
		{"bare-boolean-attribute", "declaration untouched", `<?xml version="1.0" standalone?>`, `<?xml version="1.0" standalone?>`, 0},
		{"bare-boolean-attribute", "comment untouched", `<!-- <a b/> -->`, `<!-- <a b/> -->`, 0},
		{"bare-boolean-attribute", "end tag untouched", `<a x="1"></a>`, `<a x="1"></a>`, 0},
		{"bare-boolean-attribute", "text untouched", `<t>1 < 2 b"</t>`, `<t>1 < 2 b"</t>`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.name, func(t *testing.T) {
			got, count := ruleNamed(t, tt.rule).Apply(tt.input)
			if got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if count != tt.count {
				t.Errorf("Apply(%q) count = %d, want %d", tt.input, count, tt.count)
			}
		})
	}
}

func TestRepairAppliesTableInOrder(t *testing.T) {
	input := "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
		`<GPIF><BarBar id="0"><Parameters>1</Params>` +
		`<Name><[CDATA[Lead]]></Name><Note accent"/></BarBar></GPIF>` +
		"\x00\x00"
	want := "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
		`<GPIF><Bar id="0"><Parameters>1</Parameters>` +
		`<Name><![CDATA[Lead]]></Name><Note accent="true"/></Bar></GPIF>`

	result := Repair([]byte(input))
	if string(result.Content) != want {
		t.Errorf("Repair content:\n got %q\nwant %q", result.Content, want)
	}
	wantHits := []Hit{
		{Rule: "trailing-nul-padding", Count: 1},
		{Rule: "truncated-parameters-close", Count: 1},
		{Rule: "doubled-tag-name", Count: 2},
		{Rule: "cdata-missing-bang", Count: 1},
		{Rule: "bare-boolean-attribute", Count: 1},
	}
	if !slices.Equal(result.Hits, wantHits) {
		t.Errorf("Hits = %v, want %v", result.Hits, wantHits)
	}
	if result.Total() != 6 {
		t.Errorf("Total() = %d, want 6", result.Total())
	}
	if result.Count("cdata-missing-bracket") != 0 {
		t.Error("cdata-missing-bracket should not fire after the bang is restored")
	}
	if !result.Changed() || result.Latin1 {
		t.Errorf("Changed() = %v, Latin1 = %v", result.Changed(), result.Latin1)
	}

	again := Repair(result.Content)
	if again.Changed() {
		t.Errorf("second pass changed repaired text: %v", again.Hits)
	}
}

func TestRepairCleanInputIsUnchanged(t *testing.T) {
	input := []byte(`<GPIF><Score><Title><![CDATA[Song]]></Title></Score></GPIF>`)
	result := Repair(input)
	if result.Changed() {
		t.Errorf("clean input reported changes: %v", result.Hits)
	}
	if string(result.Content) != string(input) {
		t.Errorf("content changed: %q", result.Content)
	}
}

func TestRepairDecodesLatin1(t *testing.T) {
	result := Repair([]byte("<Name>Caf\xe9</Name>\x00"))
	if !result.Latin1 {
		t.Error("Latin1 should be set for invalid UTF-8 input")
	}
	if string(result.Content) != "<Name>Café</Name>" {
		t.Errorf("Content = %q, want %q", result.Content, "<Name>Café</Name>")
	}
}

func TestSelect(t *testing.T) {
	selected, err := Select([]string{"bare-boolean-attribute"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(selected) != len(Rules())-1 {
		t.Fatalf("Select kept %d rules, want %d", len(selected), len(Rules())-1)
	}
	result := RepairWith([]byte(`<Note accent"/></Params>`), selected)
	if got := string(result.Content); got != `<Note accent"/></Parameters>` {
		t.Errorf("RepairWith = %q, want attribute left alone", got)
	}

	if _, err := Select([]string{"no-such-rule"}); err == nil {
		t.Error("Select accepted an unknown rule name")
	}
}

func TestIsXML(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		content string
		want    bool
	}{
		{"gpif extension", "score.gpif", "", true},
		{"xml extension upper case", "Content/MISC.XML", "\x00\x01", true},
		{"declaration", "data.bin", "<?xml version=\"1.0\"?><a/>", true},
		{"bom and whitespace", "data", "\xEF\xBB\xBF\n  <GPIF/>", true},
		{"binary", "sound.ogg", "OggS\x00\x02", false},
		{"less-than then digit", "numbers.txt", "<3", false},
		{"empty", "empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsXML(tt.entry, []byte(tt.content)); got != tt.want {
				t.Errorf("IsXML(%q, %q) = %v, want %v", tt.entry, tt.content, got, tt.want)
			}
		})
	}
}
