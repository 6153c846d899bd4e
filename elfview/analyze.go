package elfview

import (
	"math"
)

// SectionEntropy computes the Shannon entropy, in bits per byte, of a
// section's contents. NOBITS and empty sections have entropy 0.
func SectionEntropy[W Word](sec Section[W]) (float64, error) {
	data, err := sec.contents()
	if err != nil {
		return 0, err
	}
	return entropy(data), nil
}

// entropy computes Shannon entropy of data
func entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0.0
	}

	var freq [256]int
	for _, b := range data {
		freq[b]++
	}

	e := 0.0
	length := float64(len(data))
	for _, count := range freq {
		if count > 0 {
			p := float64(count) / length
			e -= p * math.Log2(p)
		}
	}
	return e
}

// goSections are emitted by the Go linker.
var goSections = map[string]bool{
	".go.buildinfo":    true,
	".gopclntab":       true,
	".gosymtab":        true,
	".go.fipsinfo":     true,
	".note.go.buildid": true,
}

// IsGoBinary reports whether the file carries at least two Go linker
// sections.
func IsGoBinary[W Word](h *Header[W]) (bool, error) {
	names, err := h.SectionStringTable()
	if err != nil {
		return false, err
	}
	found := 0
	for sec, err := range h.Sections().All() {
		if err != nil {
			return false, err
		}
		name, err := names.Get(sec.NameIndex, "")
		if err == nil && goSections[name] {
			found++
		}
	}
	return found >= 2, nil
}
