// Package tomledit edits TOML documents in place.
//
// A Document keeps the source text as a list of statements, each owning the
// blank lines and comments that precede it. Edits replace, insert or drop
// whole statements, and rendering concatenates what is left, so a document
// that was parsed and not modified renders back byte for byte.
//
// Decoration ownership follows one rule: trivia lines belong to the statement
// that follows them. Removing a table therefore also removes the comment
// block written directly above its header, even if a human would read that
// comment as belonging to the previous table.
package tomledit

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// Kind classifies what a name resolves to inside a table.
type Kind int

const (
	KindNone Kind = iota
	KindTable
	KindValue
	KindInlineTable
	KindArrayOfTables
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTable:
		return "table"
	case KindValue:
		return "value"
	case KindInlineTable:
		return "inline table"
	case KindArrayOfTables:
		return "array of tables"
	default:
		return "unknown"
	}
}

// Document is a parsed TOML document that can be edited and rendered
// without disturbing formatting the edit does not touch.
type Document struct {
	// sections[0] is the root body and never has a header.
	sections []*section
	trailer  string
	dotted   map[string]bool
	// newline terminates lines written by edits, matching the first line
	// of the source.
	newline string
}

type section struct {
	prefix  string
	header  string
	path    []string
	array   bool
	entries []*entry
	// hidden suppresses the header line of an empty dotted table.
	hidden bool
	// fresh marks a header created by an edit; it gets a separating blank
	// line when rendered after other content.
	fresh bool
}

type entry struct {
	prefix string
	raw    string
	key    []string
	kind   Kind
}

// Parse validates text as TOML and builds an editable document from it.
func Parse(text string) (*Document, error) {
	var probe map[string]any
	if err := toml.Unmarshal([]byte(text), &probe); err != nil {
		return nil, err
	}

	doc := &Document{
		sections: []*section{{}},
		dotted:   make(map[string]bool),
		newline:  detectNewline(text),
	}
	current := doc.sections[0]
	var pending strings.Builder

	for _, st := range split(text) {
		if st.trivia {
			pending.WriteString(st.text)
			continue
		}

		d, err := decode(st.text)
		if err != nil {
			return nil, fmt.Errorf("failed to decode statement %q: %w", strings.TrimSpace(st.text), err)
		}

		switch d.kind {
		case unstable.Table, unstable.ArrayTable:
			current = &section{
				prefix: pending.String(),
				header: st.text,
				path:   d.key,
				array:  d.kind == unstable.ArrayTable,
			}
			doc.sections = append(doc.sections, current)
		case unstable.KeyValue:
			current.entries = append(current.entries, &entry{
				prefix: pending.String(),
				raw:    st.text,
				key:    d.key,
				kind:   d.value,
			})
		default:
			return nil, fmt.Errorf("unexpected %s expression in %q", d.kind, strings.TrimSpace(st.text))
		}
		pending.Reset()
	}
	doc.trailer = pending.String()

	return doc, nil
}

func detectNewline(text string) string {
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

type decoded struct {
	kind  unstable.Kind
	key   []string
	value Kind
}

// decode parses a single statement to recover its key path and, for
// key/value pairs, the kind of the value.
func decode(text string) (decoded, error) {
	p := unstable.Parser{}
	p.Reset([]byte(text))
	if !p.NextExpression() {
		if err := p.Error(); err != nil {
			return decoded{}, err
		}
		return decoded{}, fmt.Errorf("no expression found")
	}

	expr := p.Expression()
	d := decoded{kind: expr.Kind}
	if expr.Kind != unstable.Table && expr.Kind != unstable.ArrayTable && expr.Kind != unstable.KeyValue {
		return d, nil
	}

	it := expr.Key()
	for it.Next() {
		d.key = append(d.key, string(it.Node().Data))
	}

	if expr.Kind == unstable.KeyValue {
		d.value = KindValue
		if expr.Value().Kind == unstable.InlineTable {
			d.value = KindInlineTable
		}
	}
	return d, nil
}

// ParseValue checks that text is exactly one TOML value and reports whether
// it is an inline table or another value.
func ParseValue(text string) (Kind, error) {
	p := unstable.Parser{}
	p.Reset([]byte("v = " + text + "\n"))
	if !p.NextExpression() {
		if err := p.Error(); err != nil {
			return KindNone, err
		}
		return KindNone, fmt.Errorf("no value found in %q", text)
	}

	expr := p.Expression()
	if expr.Kind != unstable.KeyValue {
		return KindNone, fmt.Errorf("%q is not a value", text)
	}
	kind := KindValue
	if expr.Value().Kind == unstable.InlineTable {
		kind = KindInlineTable
	}

	if p.NextExpression() {
		return KindNone, fmt.Errorf("%q holds more than one value", text)
	}
	if err := p.Error(); err != nil {
		return KindNone, err
	}
	return kind, nil
}

// Root returns the handle of the top-level table.
func (d *Document) Root() *Table {
	return &Table{doc: d}
}

// String renders the document.
func (d *Document) String() string {
	var b strings.Builder
	// write keeps every statement on its own line, which only matters when
	// an edit lands after a final line that had no newline.
	write := func(s string) {
		if s == "" {
			return
		}
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteString(d.newline)
		}
		b.WriteString(s)
	}

	for _, s := range d.sections {
		if s.fresh && b.Len() > 0 {
			write(d.newline)
		}
		write(s.prefix)
		if !s.hidden {
			write(s.header)
		}
		for _, e := range s.entries {
			write(e.prefix)
			write(e.raw)
		}
	}
	write(d.trailer)

	return b.String()
}

// headerSection returns the section introduced by the header for path, or
// the root body for the empty path.
func (d *Document) headerSection(path []string) *section {
	if len(path) == 0 {
		return d.sections[0]
	}
	for _, s := range d.sections[1:] {
		if !s.array && equalPath(s.path, path) {
			return s
		}
	}
	return nil
}

// insertSection adds a header for path. It goes directly before the first
// existing sub-table of path, otherwise after the last section belonging to
// the parent table, otherwise at the end.
func (d *Document) insertSection(path []string) *section {
	s := &section{
		header: "[" + renderKey(path) + "]" + d.newline,
		path:   clonePath(path),
		fresh:  true,
	}

	at := -1
	for i, other := range d.sections[1:] {
		if hasPrefix(other.path, path) {
			at = i + 1
			break
		}
	}
	if at < 0 {
		parent := path[:len(path)-1]
		for i, other := range d.sections {
			if i > 0 && hasPrefix(other.path, parent) {
				at = i + 1
			}
		}
	}
	if at < 0 {
		at = len(d.sections)
	}

	d.sections = append(d.sections, nil)
	copy(d.sections[at+1:], d.sections[at:])
	d.sections[at] = s
	return s
}

func (s *section) fullKey(e *entry) []string {
	full := make([]string, 0, len(s.path)+len(e.key))
	full = append(full, s.path...)
	return append(full, e.key...)
}
