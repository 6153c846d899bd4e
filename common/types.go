package common

// SectionInfo is the per-section record produced by the analysis report.
type SectionInfo struct {
	Name         string
	Size         uint64
	Entropy      float64
	SHA256Hash   string
	IsExecutable bool
	IsAllocated  bool
	IsWritable   bool
}

const (
	PERM_READ    = 0x4
	PERM_WRITE   = 0x2
	PERM_EXECUTE = 0x1
)

// Perm returns the section's access as PERM_* bits. Allocated sections are
// readable at run time.
func (s SectionInfo) Perm() int {
	perm := 0
	if s.IsAllocated {
		perm |= PERM_READ
	}
	if s.IsWritable {
		perm |= PERM_WRITE
	}
	if s.IsExecutable {
		perm |= PERM_EXECUTE
	}
	return perm
}

// EntropyNote labels unusually high or low entropy values.
func EntropyNote(entropy float64) string {
	switch {
	case entropy > 7.5:
		return "HIGH - possibly packed/encrypted"
	case entropy < 1.0:
		return "LOW - mostly zeros/repeated data"
	default:
		return ""
	}
}
