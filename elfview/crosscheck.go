package elfview

import (
	"fmt"

	"github.com/yalue/elf_reader"
)

// Mismatch is one disagreement between this package and elf_reader.
type Mismatch struct {
	Table  string // "section" or "segment"
	Index  int
	Field  string
	Ours   string
	Theirs string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s %d: %s: ours=%s elf_reader=%s", m.Table, m.Index, m.Field, m.Ours, m.Theirs)
}

// CrossCheck parses the same bytes with github.com/yalue/elf_reader and
// reports every section and segment field on which the two decoders
// disagree. Section names are only compared where both sides resolve them.
func CrossCheck[W Word](h *Header[W]) ([]Mismatch, error) {
	raw, err := h.buf.Slice(0, h.buf.Len())
	if err != nil {
		return nil, err
	}
	ref, err := elf_reader.ParseELFFile(raw)
	if err != nil {
		return nil, fmt.Errorf("elf_reader failed to parse file: %w", err)
	}

	var out []Mismatch
	add := func(table string, i int, field string, ours, theirs any) {
		o, t := fmt.Sprint(ours), fmt.Sprint(theirs)
		if o != t {
			out = append(out, Mismatch{Table: table, Index: i, Field: field, Ours: o, Theirs: t})
		}
	}

	for sec, err := range h.Sections().All() {
		if err != nil {
			return nil, err
		}
		i := uint16(sec.Index)
		theirs, err := ref.GetSectionHeader(i)
		if err != nil {
			out = append(out, Mismatch{Table: "section", Index: sec.Index, Field: "header", Ours: "present", Theirs: err.Error()})
			continue
		}
		add("section", sec.Index, "type", uint32(sec.Type), uint32(theirs.GetType()))
		add("section", sec.Index, "offset", uint64(sec.Offset), theirs.GetFileOffset())
		add("section", sec.Index, "size", uint64(sec.Size), theirs.GetSize())
		flags := theirs.GetFlags()
		add("section", sec.Index, "write", sec.IsWrite(), flags.Writable())
		add("section", sec.Index, "alloc", sec.IsAllocate(), flags.Allocated())
		add("section", sec.Index, "exec", sec.IsExecutable(), flags.Executable())
		if sec.Index == 0 {
			continue
		}
		ours, oerr := h.SectionName(sec)
		name, terr := ref.GetSectionName(i)
		if oerr == nil && terr == nil {
			add("section", sec.Index, "name", ours, name)
		}
	}

	for prog, err := range h.Programs().All() {
		if err != nil {
			return nil, err
		}
		theirs, err := ref.GetProgramHeader(uint16(prog.Index))
		if err != nil {
			out = append(out, Mismatch{Table: "segment", Index: prog.Index, Field: "header", Ours: "present", Theirs: err.Error()})
			continue
		}
		add("segment", prog.Index, "type", uint32(prog.Type), uint32(theirs.GetType()))
		add("segment", prog.Index, "offset", uint64(prog.Offset), theirs.GetFileOffset())
		add("segment", prog.Index, "filesz", uint64(prog.FileSize), theirs.GetFileSize())
	}
	return out, nil
}
