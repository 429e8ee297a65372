package inspect

import (
	"regexp"
	"strings"
)

// overstrike matches a character followed by a backspace, the classic
// terminal encoding for bold and underlined text in manual pages.
var overstrike = regexp.MustCompile(".\b")

// StripOverstrike removes backspace overstrike sequences, keeping the final
// character of each: "N\bNA\bA" becomes "NA".
func StripOverstrike(s string) string {
	return overstrike.ReplaceAllString(s, "")
}

// CleanDoc normalizes documentation text. Tabs are expanded, the common
// indentation of every line after the first is removed, the first line loses
// its leading whitespace, and leading and trailing blank lines are dropped.
func CleanDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "        "), "\n")

	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}
		if indent := len(line) - len(content); margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	for i := 1; i < len(lines); i++ {
		if margin > 0 && len(lines[i]) >= margin {
			lines[i] = lines[i][margin:]
		} else {
			lines[i] = strings.TrimLeft(lines[i], " ")
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// helpPage holds the sections of a rendered help page.
type helpPage struct {
	name      string
	typ       string
	kind      string
	flags     []string
	signature string
	doc       string
	members   []string
	value     string
}

const maxHelpMembers = 40

// render formats the page with bold section headings. Headings use
// overstrike so that the output matches what terminal help renderers emit;
// callers strip it before display.
func (p helpPage) render() string {
	var b strings.Builder

	section := func(title string, body ...string) {
		if len(body) == 0 {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(bold(title))
		b.WriteString("\n")
		for _, line := range body {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	name := p.name
	if p.typ != "" {
		name += " - " + p.typ
	}
	section("NAME", name)

	kind := p.kind
	if len(p.flags) > 0 {
		kind += " (" + strings.Join(p.flags, ", ") + ")"
	}
	section("KIND", kind)

	if p.signature != "" {
		section("SIGNATURE", p.signature)
	}
	if p.doc != "" {
		section("DESCRIPTION", strings.Split(p.doc, "\n")...)
	}
	if len(p.members) > 0 {
		members := p.members
		if len(members) > maxHelpMembers {
			members = append(members[:maxHelpMembers:maxHelpMembers], "...")
		}
		section("MEMBERS", members...)
	}
	if p.value != "" {
		section("VALUE", p.value)
	}

	return strings.TrimRight(b.String(), "\n")
}

func bold(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		b.WriteByte('\b')
		b.WriteRune(r)
	}
	return b.String()
}
