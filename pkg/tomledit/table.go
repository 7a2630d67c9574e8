package tomledit

// Table is a handle on a table of a Document, addressed by its key path.
// The table does not have to exist yet; handles stay valid across edits of
// the document they came from.
type Table struct {
	doc  *Document
	path []string
}

// Path returns the key path of the table.
func (t *Table) Path() []string {
	return clonePath(t.path)
}

// Subtable returns the handle of the named child table.
func (t *Table) Subtable(name string) *Table {
	return &Table{doc: t.doc, path: t.child(name)}
}

func (t *Table) child(name string) []string {
	p := make([]string, 0, len(t.path)+1)
	p = append(p, t.path...)
	return append(p, name)
}

// Get reports what name resolves to inside the table.
func (t *Table) Get(name string) Kind {
	target := t.child(name)
	kind := KindNone

	for _, s := range t.doc.sections[1:] {
		if s.array && equalPath(s.path, target) {
			return KindArrayOfTables
		}
		if hasPrefix(s.path, target) {
			kind = KindTable
		}
	}
	for _, s := range t.doc.sections {
		for _, e := range s.entries {
			full := s.fullKey(e)
			if equalPath(full, target) {
				return e.kind
			}
			if hasPrefix(full, target) {
				kind = KindTable
			}
		}
	}
	return kind
}

// Names lists the keys of the table in document order. Sub-tables and
// values are listed alike.
func (t *Table) Names() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(full []string) {
		if len(full) <= len(t.path) || !hasPrefix(full, t.path) {
			return
		}
		name := full[len(t.path)]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for i, s := range t.doc.sections {
		if i > 0 {
			add(s.path)
		}
		for _, e := range s.entries {
			add(s.fullKey(e))
		}
	}
	return names
}

// IsEmpty reports whether the table has no keys.
func (t *Table) IsEmpty() bool {
	return len(t.Names()) == 0
}

// IsDotted reports the layout style last set with SetDotted.
func (t *Table) IsDotted() bool {
	return t.doc.dotted[pathKey(t.path)]
}

// SetDotted selects how the table is laid out. A dotted table has no header
// of its own: its keys are written as dotted keys and its sub-tables carry
// the full path in their headers. A header-style table that does not exist
// in the text yet gets an empty header.
//
// Tables already written with a header and direct keys keep that header,
// and tables already written through dotted keys keep them.
func (t *Table) SetDotted(dotted bool) {
	if len(t.path) == 0 {
		return
	}
	t.doc.dotted[pathKey(t.path)] = dotted

	if s := t.doc.headerSection(t.path); s != nil {
		s.hidden = dotted && len(s.entries) == 0
		return
	}
	if dotted {
		return
	}
	if s, _ := t.lastDottedEntry(); s != nil {
		return
	}
	t.doc.insertSection(t.path)
}

// Insert sets key to the TOML value text. An existing entry keeps its
// position, but its text and the decoration above it are replaced. A
// sub-table with the same name is dropped.
func (t *Table) Insert(key, value string) error {
	kind, err := ParseValue(value)
	if err != nil {
		return err
	}

	target := t.child(key)
	for _, s := range t.doc.sections {
		for _, e := range s.entries {
			if equalPath(s.fullKey(e), target) {
				*e = *t.doc.newEntry(e.key, value, kind)
				return nil
			}
		}
	}

	t.Remove(key)
	t.place([]string{key}, value, kind)
	return nil
}

// place writes a new entry for the key path rel, relative to the table.
func (t *Table) place(rel []string, value string, kind Kind) {
	if s := t.doc.headerSection(t.path); s != nil {
		s.entries = append(s.entries, t.doc.newEntry(rel, value, kind))
		s.hidden = false
		return
	}

	if s, i := t.lastDottedEntry(); s != nil {
		key := append(clonePath(t.path[len(s.path):]), rel...)
		s.entries = append(s.entries, nil)
		copy(s.entries[i+2:], s.entries[i+1:])
		s.entries[i+1] = t.doc.newEntry(key, value, kind)
		return
	}

	if t.IsDotted() {
		parent := &Table{doc: t.doc, path: t.path[:len(t.path)-1]}
		parent.place(append([]string{t.path[len(t.path)-1]}, rel...), value, kind)
		return
	}

	s := t.doc.insertSection(t.path)
	s.entries = append(s.entries, t.doc.newEntry(rel, value, kind))
}

// lastDottedEntry finds the last entry that defines a key of the table
// through a dotted key written in an enclosing section.
func (t *Table) lastDottedEntry() (*section, int) {
	var (
		found *section
		index int
	)
	for _, s := range t.doc.sections {
		if len(s.path) >= len(t.path) {
			continue
		}
		for i, e := range s.entries {
			full := s.fullKey(e)
			if len(full) > len(t.path) && hasPrefix(full, t.path) {
				found, index = s, i
			}
		}
	}
	return found, index
}

// Remove deletes key from the table, whether it holds a value or a
// sub-table, together with the decoration owned by what is removed. It
// reports whether anything was removed.
func (t *Table) Remove(key string) bool {
	target := t.child(key)
	removed := false

	kept := t.doc.sections[:1]
	for i, s := range t.doc.sections {
		if i > 0 && hasPrefix(s.path, target) {
			removed = true
			continue
		}

		entries := s.entries[:0]
		for _, e := range s.entries {
			if hasPrefix(s.fullKey(e), target) {
				removed = true
				continue
			}
			entries = append(entries, e)
		}
		s.entries = entries

		if i > 0 {
			kept = append(kept, s)
		}
	}
	t.doc.sections = kept

	for k := range t.doc.dotted {
		if hasPrefix(splitPathKey(k), target) {
			delete(t.doc.dotted, k)
		}
	}
	return removed
}

func (d *Document) newEntry(key []string, value string, kind Kind) *entry {
	return &entry{
		raw:  renderKey(key) + " = " + value + d.newline,
		key:  key,
		kind: kind,
	}
}
