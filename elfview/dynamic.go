package elfview

import (
	"fmt"
	"iter"
	"math"

	"goelfview/common"
)

// DynamicEntry is one d_tag/d_un pair. Value holds either d_val or d_ptr
// depending on Tag.
type DynamicEntry[W Word] struct {
	Index int
	Tag   DynamicTag
	Value W
}

// DynamicTable is a SHT_DYNAMIC section.
type DynamicTable[W Word] struct {
	Section[W]
}

func (*DynamicTable[W]) accepts(t SectionType) bool { return t == SectionDynamic }
func (*DynamicTable[W]) entrySize() uint64          { return layoutOf[W]().dynamic }
func (dt *DynamicTable[W]) bind(s Section[W])       { dt.Section = s }

// All returns every record in the section, including DT_NULL and any
// padding after it.
func (dt *DynamicTable[W]) All() Stride[DynamicEntry[W]] {
	d, w := dt.hdr.dec, int(layoutOf[W]().word)
	return records(dt.Section, layoutOf[W]().dynamic, func(i int, b []byte) DynamicEntry[W] {
		return DynamicEntry[W]{Index: i, Tag: DynamicTag(d.sword(b, 0)), Value: d.word(b, w)}
	})
}

// Entries yields entries up to, not including, the first DT_NULL.
func (dt *DynamicTable[W]) Entries() iter.Seq2[DynamicEntry[W], error] {
	return func(yield func(DynamicEntry[W], error) bool) {
		for e, err := range dt.All().All() {
			if err != nil {
				yield(e, err)
				return
			}
			if e.Tag == DynNull || !yield(e, nil) {
				return
			}
		}
	}
}

// Strings returns the string table named by sh_link, normally .dynstr.
func (dt *DynamicTable[W]) Strings() (*StringTable[W], error) {
	return dt.hdr.linkedStrings(dt.Link)
}

// Needed returns the DT_NEEDED library names in order.
func (dt *DynamicTable[W]) Needed() ([]string, error) {
	return dt.stringValues(DynNeeded)
}

// SOName returns the DT_SONAME value, or "" if there is none.
func (dt *DynamicTable[W]) SOName() (string, error) {
	names, err := dt.stringValues(DynSOName)
	if err != nil || len(names) == 0 {
		return "", err
	}
	return names[0], nil
}

func (dt *DynamicTable[W]) stringValues(tag DynamicTag) ([]string, error) {
	var strs *StringTable[W]
	var out []string
	for e, err := range dt.Entries() {
		if err != nil {
			return nil, err
		}
		if e.Tag != tag {
			continue
		}
		if strs == nil {
			if strs, err = dt.Strings(); err != nil {
				return nil, err
			}
		}
		if uint64(e.Value) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %s value %#x", common.ErrOutOfBounds, tag, uint64(e.Value))
		}
		s, err := strs.Get(uint32(e.Value), "")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
