package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	mathstats "github.com/aclements/go-moremath/stats"
	"github.com/ianlancetaylor/demangle"

	"goelfview/bytebuf"
	"goelfview/common"
	"goelfview/elfview"
)

// Sections whose contents are scanned for notable strings by -analyze.
var stringSections = []string{".comment", ".rodata", ".go.buildinfo"}

// Upper bound on the bytes scanned per section for notable strings
const maxStringScan = 1 << 20

// reportOptions selects the parts of a report.
type reportOptions struct {
	Header   bool
	Sections bool
	Segments bool
	Symbols  bool
	Relocs   bool
	Dynamic  bool
	Demangle bool
	Analyze  bool
	Verify   bool
	Filter   string
}

// reportStats counts what a report looked at.
type reportStats struct {
	Sections   int
	Segments   int
	Symbols    int
	Relocs     int
	Mismatches int
	Failed     int // failed verification checks
}

// report writes the views of one decoded file.
type report[W elfview.Word] struct {
	h     *elfview.Header[W]
	w     io.Writer
	opts  *reportOptions
	stats reportStats

	exact, prefixes []string
}

// inspect decodes buf with the width named in its identification block and
// writes the requested report to w.
func inspect(buf *bytebuf.Buffer, w io.Writer, opts *reportOptions) (*reportStats, error) {
	id, err := elfview.ReadIdent(buf)
	if err != nil {
		return nil, err
	}
	if id.Class == elfview.Class64 {
		return inspectClass[uint64](buf, w, opts)
	}
	return inspectClass[uint32](buf, w, opts)
}

func inspectClass[W elfview.Word](buf *bytebuf.Buffer, w io.Writer, opts *reportOptions) (*reportStats, error) {
	h, err := elfview.ReadHeader[W](buf)
	if err != nil {
		return nil, err
	}
	r := newReport(h, w, opts)
	steps := []struct {
		enabled bool
		run     func() error
	}{
		{opts.Header, r.printHeader},
		{opts.Sections, r.printSections},
		{opts.Segments, r.printSegments},
		{opts.Symbols, func() error { return r.printSymbols("") }},
		{opts.Relocs, func() error { return r.printRelocs("") }},
		{opts.Dynamic, r.printDynamic},
		{opts.Analyze, r.printAnalysis},
		{opts.Verify, r.printVerify},
	}
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		if err := step.run(); err != nil {
			return &r.stats, err
		}
	}
	return &r.stats, nil
}

func newReport[W elfview.Word](h *elfview.Header[W], w io.Writer, opts *reportOptions) *report[W] {
	r := &report[W]{h: h, w: w, opts: opts}
	r.exact, r.prefixes = common.ParsePatterns(opts.Filter)
	return r
}

func (r *report[W]) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

// selected reports whether a section name passes the -filter patterns.
func (r *report[W]) selected(name string) bool {
	if len(r.exact) == 0 && len(r.prefixes) == 0 {
		return true
	}
	return common.MatchesPattern(name, r.exact, r.prefixes)
}

// sectionName never fails: unresolvable names print as their index.
func (r *report[W]) sectionName(sec elfview.Section[W]) string {
	name, err := sec.Name()
	if err != nil {
		return fmt.Sprintf("<%d>", sec.NameIndex)
	}
	return name
}

func (r *report[W]) symbolName(name string) string {
	if r.opts.Demangle {
		return demangle.Filter(name)
	}
	return name
}

func (r *report[W]) printHeader() error {
	h := r.h
	r.printf("ELF Header:\n")
	r.printf("  %-35s %s\n", "Class:", h.Ident.Class)
	r.printf("  %-35s %s\n", "Data:", h.Ident.Data)
	r.printf("  %-35s %d\n", "Version:", h.Ident.Version)
	r.printf("  %-35s %s\n", "OS/ABI:", h.Ident.OSABI)
	r.printf("  %-35s %d\n", "ABI Version:", h.Ident.ABIVersion)
	r.printf("  %-35s %s\n", "Type:", h.Type)
	r.printf("  %-35s %s\n", "Machine:", h.Machine)
	r.printf("  %-35s %#x\n", "Entry point address:", uint64(h.Entry))
	r.printf("  %-35s %d (bytes into file)\n", "Start of program headers:", uint64(h.ProgramOffset))
	r.printf("  %-35s %d (bytes into file)\n", "Start of section headers:", uint64(h.SectionOffset))
	r.printf("  %-35s %#x\n", "Flags:", h.Flags)
	r.printf("  %-35s %d (bytes)\n", "Size of this header:", h.HeaderSize)
	r.printf("  %-35s %d (bytes)\n", "Size of program headers:", h.ProgramEntrySize)
	r.printf("  %-35s %d\n", "Number of program headers:", h.ProgramCount)
	r.printf("  %-35s %d (bytes)\n", "Size of section headers:", h.SectionEntrySize)
	r.printf("  %-35s %d\n", "Number of section headers:", h.SectionCount)
	r.printf("  %-35s %d\n", "Section header string table index:", h.StringTableIndex)

	interp, err := h.Interpreter()
	if err != nil {
		r.printf("  %-35s %v\n", "Interpreter:", err)
	} else if interp != "" {
		r.printf("  %-35s %s\n", "Interpreter:", interp)
	}
	return nil
}

func (r *report[W]) printSections() error {
	r.printf("\nSection Headers:\n")
	r.printf("  [%3s] %-20s %-14s %-18s %-10s %-10s %-6s %-5s %3s %4s %5s\n",
		"Nr", "Name", "Type", "Address", "Off", "Size", "ES", "Flg", "Lk", "Inf", "Al")
	for sec, err := range r.h.Sections().All() {
		if err != nil {
			return err
		}
		name := r.sectionName(sec)
		if sec.Index > 0 && !r.selected(name) {
			continue
		}
		r.stats.Sections++
		r.printf("  [%3d] %-20s %-14s %018x %010x %010x %06x %-5s %3d %4d %5d\n",
			sec.Index, name, sec.Type, uint64(sec.Addr), uint64(sec.Offset), uint64(sec.Size),
			uint64(sec.EntrySize), sec.Flags, sec.Link, sec.Info, uint64(sec.Align))
	}
	return nil
}

func (r *report[W]) printSegments() error {
	r.printf("\nProgram Headers:\n")
	r.printf("  %-14s %-10s %-18s %-18s %-10s %-10s %-3s %s\n",
		"Type", "Offset", "VirtAddr", "PhysAddr", "FileSiz", "MemSiz", "Flg", "Align")
	for p, err := range r.h.Programs().All() {
		if err != nil {
			return err
		}
		r.stats.Segments++
		r.printf("  %-14s %010x %018x %018x %010x %010x %-3s %#x\n",
			p.Type, uint64(p.Offset), uint64(p.VAddr), uint64(p.PAddr),
			uint64(p.FileSize), uint64(p.MemSize), p.Flags, uint64(p.Align))
		if p.Type == elfview.ProgramInterp {
			if ip, err := p.Interpreter(); err == nil {
				if path, err := ip.PathName(); err == nil {
					r.printf("      [Requesting program interpreter: %s]\n", path)
				}
			}
		}
		if err := p.CheckAlignment(); err != nil {
			r.printf("      ⚠️ %v\n", err)
		}
	}
	return nil
}

// symbolTables returns the symbol tables to print: every SYMTAB and DYNSYM
// section, or only the one named.
func (r *report[W]) symbolTables(name string) ([]*elfview.SymbolTable[W], error) {
	var tables []*elfview.SymbolTable[W]
	for sec, err := range r.h.Sections().All() {
		if err != nil {
			return nil, err
		}
		if sec.Type != elfview.SectionSymTab && sec.Type != elfview.SectionDynSym {
			continue
		}
		if name != "" && r.sectionName(sec) != name {
			continue
		}
		st, err := elfview.Cast[elfview.SymbolTable[W]](sec)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", sec.Index, err)
		}
		tables = append(tables, st)
	}
	if name != "" && len(tables) == 0 {
		return nil, fmt.Errorf("%w: no symbol table %q", common.ErrNoSuchSection, name)
	}
	return tables, nil
}

func (r *report[W]) printSymbols(name string) error {
	tables, err := r.symbolTables(name)
	if err != nil {
		return err
	}
	for _, st := range tables {
		syms := st.Symbols()
		r.printf("\nSymbol table '%s' contains %d entries:\n", r.sectionName(st.Section), syms.Len())
		r.printf("  %6s %-18s %5s %-7s %-6s %-9s %5s %s\n",
			"Num:", "Value", "Size", "Type", "Bind", "Vis", "Ndx", "Name")
		for sym, err := range syms.All() {
			if err != nil {
				return err
			}
			r.stats.Symbols++
			symName, err := st.Name(sym)
			if err != nil {
				symName = fmt.Sprintf("<%v>", err)
			}
			r.printf("  %5d: %018x %5d %-7s %-6s %-9s %5s %s\n",
				sym.Index, uint64(sym.Value), uint64(sym.Size), sym.Type(), sym.Binding(),
				sym.Visibility(), sectionIndex(sym.SectionIndex), r.symbolName(symName))
		}
	}
	return nil
}

// sectionIndex formats st_shndx with the reserved values spelled out.
func sectionIndex(i uint16) string {
	switch i {
	case 0:
		return "UND"
	case 0xfff1:
		return "ABS"
	case 0xfff2:
		return "COM"
	default:
		return fmt.Sprint(i)
	}
}

func (r *report[W]) printRelocs(name string) error {
	found := false
	for sec, err := range r.h.Sections().All() {
		if err != nil {
			return err
		}
		if name != "" && r.sectionName(sec) != name {
			continue
		}
		var entries elfview.Stride[elfview.Relocation[W]]
		var symbols *elfview.SymbolTable[W]
		switch sec.Type {
		case elfview.SectionRel:
			rt, err := elfview.Cast[elfview.RelocationTable[W]](sec)
			if err != nil {
				return fmt.Errorf("section %d: %w", sec.Index, err)
			}
			entries = rt.Relocations()
			symbols, _ = rt.Symbols()
		case elfview.SectionRela:
			rt, err := elfview.Cast[elfview.RelocationAddendTable[W]](sec)
			if err != nil {
				return fmt.Errorf("section %d: %w", sec.Index, err)
			}
			entries = rt.Relocations()
			symbols, _ = rt.Symbols()
		default:
			continue
		}
		found = true
		r.printf("\nRelocation section '%s' at offset %#x contains %d entries:\n",
			r.sectionName(sec), uint64(sec.Offset), entries.Len())
		r.printf("  %-18s %-18s %-8s %-8s %s\n", "Offset", "Info", "Type", "Addend", "Symbol")
		for rel, err := range entries.All() {
			if err != nil {
				return err
			}
			r.stats.Relocs++
			r.printf("  %018x %018x %-8d %-8d %s\n",
				uint64(rel.Offset), uint64(rel.Info), rel.Type(), rel.Addend, r.relocSymbol(symbols, rel))
		}
	}
	if name != "" && !found {
		return fmt.Errorf("%w: no relocation section %q", common.ErrNoSuchSection, name)
	}
	return nil
}

// relocSymbol names the symbol a relocation refers to, or "" when it has
// none or it cannot be resolved.
func (r *report[W]) relocSymbol(symbols *elfview.SymbolTable[W], rel elfview.Relocation[W]) string {
	if symbols == nil || rel.SymbolIndex() == 0 {
		return ""
	}
	sym, err := symbols.Symbols().At(int(rel.SymbolIndex()))
	if err != nil {
		return fmt.Sprintf("<symbol %d>", rel.SymbolIndex())
	}
	name, err := symbols.Name(sym)
	if err != nil {
		return fmt.Sprintf("<symbol %d>", rel.SymbolIndex())
	}
	return r.symbolName(name)
}

func (r *report[W]) printDynamic() error {
	for sec, err := range r.h.Sections().All() {
		if err != nil {
			return err
		}
		if sec.Type != elfview.SectionDynamic {
			continue
		}
		dt, err := elfview.Cast[elfview.DynamicTable[W]](sec)
		if err != nil {
			return fmt.Errorf("section %d: %w", sec.Index, err)
		}
		r.printf("\nDynamic section at offset %#x contains %d entries:\n", uint64(sec.Offset), dt.All().Len())
		r.printf("  %-20s %s\n", "Tag", "Value")
		strs, strErr := dt.Strings()
		for e, err := range dt.Entries() {
			if err != nil {
				return err
			}
			value := fmt.Sprintf("%#x", uint64(e.Value))
			switch e.Tag {
			case elfview.DynNeeded, elfview.DynSOName, elfview.DynRPath, elfview.DynRunPath:
				if strErr == nil && uint64(e.Value) <= 0xffffffff {
					if s, err := strs.Get(uint32(e.Value), ""); err == nil {
						value = "[" + s + "]"
					}
				}
			}
			r.printf("  %-20s %s\n", e.Tag, value)
		}
		needed, err := dt.Needed()
		if err == nil && len(needed) > 0 {
			r.printf("  Needed: %s\n", strings.Join(needed, ", "))
		}
		if soname, err := dt.SOName(); err == nil && soname != "" {
			r.printf("  SONAME: %s\n", soname)
		}
	}
	return nil
}

// sectionInfo hashes and measures one section.
func (r *report[W]) sectionInfo(sec elfview.Section[W]) (common.SectionInfo, error) {
	info := common.SectionInfo{
		Name:         r.sectionName(sec),
		Size:         uint64(sec.Size),
		IsExecutable: sec.IsExecutable(),
		IsAllocated:  sec.IsAllocate(),
		IsWritable:   sec.IsWrite(),
	}
	e, err := elfview.SectionEntropy(sec)
	if err != nil {
		return info, err
	}
	info.Entropy = e
	if sec.Type != elfview.SectionNoBits {
		sum := sha256.New()
		if _, err := io.Copy(sum, sec.Open()); err != nil {
			return info, err
		}
		info.SHA256Hash = hex.EncodeToString(sum.Sum(nil))
	}
	return info, nil
}

func (r *report[W]) printAnalysis() error {
	var findings []common.Finding
	var entropies []float64

	r.printf("\nSection analysis:\n")
	r.printf("  %-20s %10s %8s %-4s %-16s %s\n", "Name", "Size", "Entropy", "Perm", "SHA256", "Note")
	for sec, err := range r.h.Sections().All() {
		if err != nil {
			return err
		}
		if sec.Index == 0 || sec.Size == 0 {
			continue
		}
		if !sec.InFile() {
			findings = append(findings, common.Finding{
				Message: fmt.Sprintf("section %d lies outside the file", sec.Index),
				IsRisky: true,
			})
			continue
		}
		info, err := r.sectionInfo(sec)
		if err != nil {
			return err
		}
		if !r.selected(info.Name) {
			continue
		}
		hash := info.SHA256Hash
		if len(hash) > 16 {
			hash = hash[:16]
		}
		note := common.EntropyNote(info.Entropy)
		r.printf("  %-20s %10d %8.3f %-4s %-16s %s\n", info.Name, info.Size, info.Entropy, perm(info.Perm()), hash, note)
		if sec.Type != elfview.SectionNoBits {
			entropies = append(entropies, info.Entropy)
		}
		if note != "" && info.Perm()&common.PERM_EXECUTE != 0 {
			findings = append(findings, common.Finding{
				Message: fmt.Sprintf("section %s entropy %.2f: %s", info.Name, info.Entropy, note),
				IsRisky: true,
			})
		}
		if info.IsWritable && info.IsExecutable {
			findings = append(findings, common.Finding{
				Message: fmt.Sprintf("section %s is writable and executable", info.Name),
				IsRisky: true,
			})
		}
	}
	if len(entropies) > 0 {
		lo, hi := mathstats.Bounds(entropies)
		r.printf("  Entropy over %d sections: min %.3f, max %.3f, mean %.3f, stddev %.3f\n",
			len(entropies), lo, hi, mathstats.Mean(entropies), mathstats.StdDev(entropies))
	}

	for p, err := range r.h.Programs().All() {
		if err != nil {
			return err
		}
		if p.Type == elfview.ProgramLoad && p.IsWrite() && p.IsExecute() {
			findings = append(findings, common.Finding{
				Message: fmt.Sprintf("segment %d is writable and executable", p.Index),
				IsRisky: true,
			})
		}
	}

	if goBinary, err := elfview.IsGoBinary(r.h); err == nil && goBinary {
		findings = append(findings, common.Finding{Message: "Go linker sections present"})
	}

	strs, err := r.notableStrings()
	if err != nil {
		return err
	}
	for category, items := range common.CategorizeStrings(strs) {
		for _, s := range items {
			findings = append(findings, common.Finding{Message: fmt.Sprintf("string [%s] %s", category, s)})
		}
	}

	r.printf("\n%s\n", common.FormatFindings("Findings:", findings, common.CategorizeFindings(findings)))
	return nil
}

// notableStrings extracts printable strings from the sections that usually
// carry compiler and build information.
func (r *report[W]) notableStrings() ([]string, error) {
	var strs []string
	for _, name := range stringSections {
		sec, err := r.h.SectionByName(name)
		if err != nil {
			continue
		}
		if sec.Type == elfview.SectionNoBits || !sec.InFile() {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(sec.Open(), maxStringScan))
		if err != nil {
			return nil, err
		}
		strs = append(strs, common.ExtractStrings(data, 6)...)
	}
	return strs, nil
}

func perm(p int) string {
	b := []byte("---")
	if p&common.PERM_READ != 0 {
		b[0] = 'r'
	}
	if p&common.PERM_WRITE != 0 {
		b[1] = 'w'
	}
	if p&common.PERM_EXECUTE != 0 {
		b[2] = 'x'
	}
	return string(b)
}

// checks runs every consistency check over the file.
func (r *report[W]) checks() ([]string, []*common.CheckResult, error) {
	var names []string
	var results []*common.CheckResult
	add := func(name string, res *common.CheckResult) {
		names = append(names, name)
		results = append(results, res)
	}

	if r.h.Programs().Len() == 0 {
		add("segment alignment", common.NewSkipped("no program headers"))
	} else {
		bad := 0
		for p, err := range r.h.Programs().All() {
			if err != nil {
				return nil, nil, err
			}
			if p.CheckAlignment() != nil {
				bad++
			}
		}
		if bad > 0 {
			add("segment alignment", common.NewFailed("misaligned LOAD segments", bad))
		} else {
			add("segment alignment", common.NewPassed("all segments", r.h.Programs().Len()))
		}
	}

	inFile := 0
	outside := 0
	for sec, err := range r.h.Sections().All() {
		if err != nil {
			return nil, nil, err
		}
		if sec.InFile() {
			inFile++
		} else {
			outside++
		}
	}
	if outside > 0 {
		add("section bounds", common.NewFailed("sections past end of file", outside))
	} else {
		add("section bounds", common.NewPassed("all sections in file", inFile))
	}

	switch _, err := r.h.SymbolStringTable(); {
	case err == nil:
		add("symbol strings", common.NewPassed(".strtab", 1))
	case errors.Is(err, common.ErrMissingStringTable):
		add("symbol strings", common.NewSkipped("no .strtab"))
	default:
		add("symbol strings", common.NewFailed(err.Error(), 0))
	}

	if interp, err := r.h.Interpreter(); err != nil {
		add("interpreter", common.NewFailed(err.Error(), 0))
	} else if interp == "" {
		add("interpreter", common.NewSkipped("no PT_INTERP"))
	} else {
		add("interpreter", common.NewPassed(interp, 0))
	}

	mismatches, err := elfview.CrossCheck(r.h)
	switch {
	case err != nil:
		add("elf_reader cross-check", common.NewSkipped(err.Error()))
	case len(mismatches) > 0:
		r.stats.Mismatches += len(mismatches)
		for _, m := range mismatches {
			r.printf("      ⚠️ %s\n", m)
		}
		add("elf_reader cross-check", common.NewFailed("decoders disagree", len(mismatches)))
	default:
		add("elf_reader cross-check", common.NewPassed("decoders agree", r.h.Sections().Len()+r.h.Programs().Len()))
	}
	return names, results, nil
}

func (r *report[W]) printVerify() error {
	r.printf("\nVerification:\n")
	names, results, err := r.checks()
	if err != nil {
		return err
	}
	for i, res := range results {
		if !res.Passed && !res.Skipped {
			r.stats.Failed++
		}
		r.printf("  %-24s %s\n", names[i]+":", res)
	}
	return nil
}
