package clang

import "strings"

// DedupField selects one field of Entry to include in the duplicate-
// suppression key (spec.md §4.10).
type DedupField int

const (
	DedupDirectory DedupField = iota
	DedupFile
	DedupArguments
	DedupCommand
	DedupOutput
)

// DefaultDedupFields matches spec.md §4.10's default: {file, arguments}.
var DefaultDedupFields = []DedupField{DedupFile, DedupArguments}

// Deduplicator suppresses Entries that collide on a configured tuple of
// fields, keeping the first occurrence.
type Deduplicator struct {
	fields []DedupField
	seen   map[string]bool
}

func NewDeduplicator(fields []DedupField) *Deduplicator {
	if len(fields) == 0 {
		fields = DefaultDedupFields
	}
	return &Deduplicator{fields: fields, seen: make(map[string]bool)}
}

// Keep reports whether e is the first Entry seen with its dedup key; if
// so it records the key and returns true, otherwise false.
func (d *Deduplicator) Keep(e Entry) bool {
	key := d.key(e)
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

func (d *Deduplicator) key(e Entry) string {
	var b strings.Builder
	for _, f := range d.fields {
		switch f {
		case DedupDirectory:
			b.WriteString("D:")
			b.WriteString(e.Directory)
		case DedupFile:
			b.WriteString("F:")
			b.WriteString(e.File)
		case DedupArguments:
			b.WriteString("A:")
			b.WriteString(strings.Join(e.Arguments, "\x00"))
		case DedupCommand:
			b.WriteString("C:")
			b.WriteString(e.Command)
		case DedupOutput:
			b.WriteString("O:")
			b.WriteString(e.Output)
		}
		b.WriteByte('\x1f')
	}
	return b.String()
}
