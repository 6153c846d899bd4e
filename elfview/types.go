package elfview

import "fmt"

// Class is EI_CLASS.
type Class uint8

const (
	ClassNone Class = 0
	Class32   Class = 1
	Class64   Class = 2
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "ELFCLASSNONE"
	case Class32:
		return "ELF32"
	case Class64:
		return "ELF64"
	default:
		return unknown(uint64(c))
	}
}

// Data is EI_DATA, the encoding of every multi-byte field.
type Data uint8

const (
	DataNone         Data = 0
	DataLittleEndian Data = 1
	DataBigEndian    Data = 2
)

func (d Data) String() string {
	switch d {
	case DataNone:
		return "ELFDATANONE"
	case DataLittleEndian:
		return "little endian"
	case DataBigEndian:
		return "big endian"
	default:
		return unknown(uint64(d))
	}
}

type OSABI uint8

const (
	OSABISystemV    OSABI = 0
	OSABIHPUX       OSABI = 1
	OSABINetBSD     OSABI = 2
	OSABILinux      OSABI = 3
	OSABISolaris    OSABI = 6
	OSABIFreeBSD    OSABI = 9
	OSABIOpenBSD    OSABI = 12
	OSABIARM        OSABI = 97
	OSABIStandalone OSABI = 255
)

func (o OSABI) String() string {
	switch o {
	case OSABISystemV:
		return "UNIX - System V"
	case OSABIHPUX:
		return "HP-UX"
	case OSABINetBSD:
		return "NetBSD"
	case OSABILinux:
		return "Linux"
	case OSABISolaris:
		return "Solaris"
	case OSABIFreeBSD:
		return "FreeBSD"
	case OSABIOpenBSD:
		return "OpenBSD"
	case OSABIARM:
		return "ARM"
	case OSABIStandalone:
		return "Standalone"
	default:
		return unknown(uint64(o))
	}
}

// FileType is e_type.
type FileType uint16

const (
	TypeNone         FileType = 0
	TypeRelocatable  FileType = 1
	TypeExecutable   FileType = 2
	TypeSharedObject FileType = 3
	TypeCore         FileType = 4
)

func (t FileType) String() string {
	switch t {
	case TypeNone:
		return "NONE"
	case TypeRelocatable:
		return "REL (Relocatable file)"
	case TypeExecutable:
		return "EXEC (Executable file)"
	case TypeSharedObject:
		return "DYN (Shared object file)"
	case TypeCore:
		return "CORE (Core file)"
	default:
		return unknown(uint64(t))
	}
}

// Machine is e_machine. Only a handful of values have names; the rest print
// numerically.
type Machine uint16

const (
	MachineNone    Machine = 0
	MachineSPARC   Machine = 2
	Machine386     Machine = 3
	Machine68K     Machine = 4
	Machine88K     Machine = 5
	Machine860     Machine = 7
	MachineMIPS    Machine = 8
	MachinePPC     Machine = 20
	MachinePPC64   Machine = 21
	MachineS390    Machine = 22
	MachineARM     Machine = 40
	MachineX86_64  Machine = 62
	MachineAArch64 Machine = 183
	MachineRISCV   Machine = 243
)

func (m Machine) String() string {
	switch m {
	case MachineNone:
		return "None"
	case MachineSPARC:
		return "SPARC"
	case Machine386:
		return "Intel 80386"
	case Machine68K:
		return "Motorola 68000"
	case Machine88K:
		return "Motorola 88000"
	case Machine860:
		return "Intel 80860"
	case MachineMIPS:
		return "MIPS R3000"
	case MachinePPC:
		return "PowerPC"
	case MachinePPC64:
		return "PowerPC64"
	case MachineS390:
		return "IBM S/390"
	case MachineARM:
		return "ARM"
	case MachineX86_64:
		return "Advanced Micro Devices X86-64"
	case MachineAArch64:
		return "AArch64"
	case MachineRISCV:
		return "RISC-V"
	default:
		return unknown(uint64(m))
	}
}

// ProgramType is p_type.
type ProgramType uint32

const (
	ProgramNull        ProgramType = 0
	ProgramLoad        ProgramType = 1
	ProgramDynamic     ProgramType = 2
	ProgramInterp      ProgramType = 3
	ProgramNote        ProgramType = 4
	ProgramShlib       ProgramType = 5
	ProgramPhdr        ProgramType = 6
	ProgramTLS         ProgramType = 7
	ProgramGNUEHFrame  ProgramType = 0x6474e550
	ProgramGNUStack    ProgramType = 0x6474e551
	ProgramGNURelro    ProgramType = 0x6474e552
	ProgramGNUProperty ProgramType = 0x6474e553
)

func (t ProgramType) String() string {
	switch t {
	case ProgramNull:
		return "NULL"
	case ProgramLoad:
		return "LOAD"
	case ProgramDynamic:
		return "DYNAMIC"
	case ProgramInterp:
		return "INTERP"
	case ProgramNote:
		return "NOTE"
	case ProgramShlib:
		return "SHLIB"
	case ProgramPhdr:
		return "PHDR"
	case ProgramTLS:
		return "TLS"
	case ProgramGNUEHFrame:
		return "GNU_EH_FRAME"
	case ProgramGNUStack:
		return "GNU_STACK"
	case ProgramGNURelro:
		return "GNU_RELRO"
	case ProgramGNUProperty:
		return "GNU_PROPERTY"
	default:
		return unknown(uint64(t))
	}
}

// ProgramFlag is p_flags.
type ProgramFlag uint32

const (
	ProgramFlagExecute ProgramFlag = 0x1
	ProgramFlagWrite   ProgramFlag = 0x2
	ProgramFlagRead    ProgramFlag = 0x4
)

// String renders the flags readelf style, e.g. "R E".
func (f ProgramFlag) String() string {
	b := []byte("   ")
	if f&ProgramFlagRead != 0 {
		b[0] = 'R'
	}
	if f&ProgramFlagWrite != 0 {
		b[1] = 'W'
	}
	if f&ProgramFlagExecute != 0 {
		b[2] = 'E'
	}
	return string(b)
}

// SectionType is sh_type.
type SectionType uint32

const (
	SectionNull         SectionType = 0
	SectionProgBits     SectionType = 1
	SectionSymTab       SectionType = 2
	SectionStrTab       SectionType = 3
	SectionRela         SectionType = 4
	SectionHash         SectionType = 5
	SectionDynamic      SectionType = 6
	SectionNote         SectionType = 7
	SectionNoBits       SectionType = 8
	SectionRel          SectionType = 9
	SectionShlib        SectionType = 10
	SectionDynSym       SectionType = 11
	SectionInitArray    SectionType = 14
	SectionFiniArray    SectionType = 15
	SectionPreinitArray SectionType = 16
	SectionGroup        SectionType = 17
	SectionSymTabShndx  SectionType = 18
	SectionGNUHash      SectionType = 0x6ffffff6
	SectionGNUVerdef    SectionType = 0x6ffffffd
	SectionGNUVerneed   SectionType = 0x6ffffffe
	SectionGNUVersym    SectionType = 0x6fffffff
)

func (t SectionType) String() string {
	switch t {
	case SectionNull:
		return "NULL"
	case SectionProgBits:
		return "PROGBITS"
	case SectionSymTab:
		return "SYMTAB"
	case SectionStrTab:
		return "STRTAB"
	case SectionRela:
		return "RELA"
	case SectionHash:
		return "HASH"
	case SectionDynamic:
		return "DYNAMIC"
	case SectionNote:
		return "NOTE"
	case SectionNoBits:
		return "NOBITS"
	case SectionRel:
		return "REL"
	case SectionShlib:
		return "SHLIB"
	case SectionDynSym:
		return "DYNSYM"
	case SectionInitArray:
		return "INIT_ARRAY"
	case SectionFiniArray:
		return "FINI_ARRAY"
	case SectionPreinitArray:
		return "PREINIT_ARRAY"
	case SectionGroup:
		return "GROUP"
	case SectionSymTabShndx:
		return "SYMTAB_SHNDX"
	case SectionGNUHash:
		return "GNU_HASH"
	case SectionGNUVerdef:
		return "VERDEF"
	case SectionGNUVerneed:
		return "VERNEED"
	case SectionGNUVersym:
		return "VERSYM"
	default:
		return unknown(uint64(t))
	}
}

// SectionFlag is sh_flags, widened to 64 bits.
type SectionFlag uint64

const (
	SectionFlagWrite     SectionFlag = 0x1
	SectionFlagAlloc     SectionFlag = 0x2
	SectionFlagExecInstr SectionFlag = 0x4
	SectionFlagMerge     SectionFlag = 0x10
	SectionFlagStrings   SectionFlag = 0x20
	SectionFlagInfoLink  SectionFlag = 0x40
	SectionFlagTLS       SectionFlag = 0x400
)

// String renders the flags with readelf's key letters.
func (f SectionFlag) String() string {
	var b []byte
	for _, k := range []struct {
		flag SectionFlag
		key  byte
	}{
		{SectionFlagWrite, 'W'},
		{SectionFlagAlloc, 'A'},
		{SectionFlagExecInstr, 'X'},
		{SectionFlagMerge, 'M'},
		{SectionFlagStrings, 'S'},
		{SectionFlagInfoLink, 'I'},
		{SectionFlagTLS, 'T'},
	} {
		if f&k.flag != 0 {
			b = append(b, k.key)
		}
	}
	return string(b)
}

// SymbolBinding is the high nibble of st_info.
type SymbolBinding uint8

const (
	BindLocal  SymbolBinding = 0
	BindGlobal SymbolBinding = 1
	BindWeak   SymbolBinding = 2
)

func (b SymbolBinding) String() string {
	switch b {
	case BindLocal:
		return "LOCAL"
	case BindGlobal:
		return "GLOBAL"
	case BindWeak:
		return "WEAK"
	default:
		return unknown(uint64(b))
	}
}

// SymbolType is the low nibble of st_info.
type SymbolType uint8

const (
	SymbolNone    SymbolType = 0
	SymbolObject  SymbolType = 1
	SymbolFunc    SymbolType = 2
	SymbolSection SymbolType = 3
	SymbolFile    SymbolType = 4
)

func (t SymbolType) String() string {
	switch t {
	case SymbolNone:
		return "NOTYPE"
	case SymbolObject:
		return "OBJECT"
	case SymbolFunc:
		return "FUNC"
	case SymbolSection:
		return "SECTION"
	case SymbolFile:
		return "FILE"
	default:
		return unknown(uint64(t))
	}
}

// SymbolVisibility is the low two bits of st_other.
type SymbolVisibility uint8

const (
	VisibilityDefault   SymbolVisibility = 0
	VisibilityInternal  SymbolVisibility = 1
	VisibilityHidden    SymbolVisibility = 2
	VisibilityProtected SymbolVisibility = 3
)

func (v SymbolVisibility) String() string {
	switch v {
	case VisibilityDefault:
		return "DEFAULT"
	case VisibilityInternal:
		return "INTERNAL"
	case VisibilityHidden:
		return "HIDDEN"
	case VisibilityProtected:
		return "PROTECTED"
	default:
		return unknown(uint64(v))
	}
}

// DynamicTag is d_tag. The set is open ended: vendor tags decode as their
// numeric value.
type DynamicTag int64

const (
	DynNull         DynamicTag = 0
	DynNeeded       DynamicTag = 1
	DynPLTRelSize   DynamicTag = 2
	DynPLTGOT       DynamicTag = 3
	DynHash         DynamicTag = 4
	DynStrTab       DynamicTag = 5
	DynSymTab       DynamicTag = 6
	DynRela         DynamicTag = 7
	DynRelaSize     DynamicTag = 8
	DynRelaEnt      DynamicTag = 9
	DynStrSize      DynamicTag = 10
	DynSymEnt       DynamicTag = 11
	DynInit         DynamicTag = 12
	DynFini         DynamicTag = 13
	DynSOName       DynamicTag = 14
	DynRPath        DynamicTag = 15
	DynSymbolic     DynamicTag = 16
	DynRel          DynamicTag = 17
	DynRelSize      DynamicTag = 18
	DynRelEnt       DynamicTag = 19
	DynPLTRel       DynamicTag = 20
	DynDebug        DynamicTag = 21
	DynTextRel      DynamicTag = 22
	DynJmpRel       DynamicTag = 23
	DynBindNow      DynamicTag = 24
	DynInitArray    DynamicTag = 25
	DynFiniArray    DynamicTag = 26
	DynInitArraySz  DynamicTag = 27
	DynFiniArraySz  DynamicTag = 28
	DynRunPath      DynamicTag = 29
	DynFlags        DynamicTag = 30
	DynPreinitArray DynamicTag = 32
	DynPreinitArrSz DynamicTag = 33

	// DynVendorLow is the lowest GNU/vendor extension tag value.
	DynVendorLow   DynamicTag = 0x6ffffef5
	DynGNUHash     DynamicTag = 0x6ffffef5
	DynVersym      DynamicTag = 0x6ffffff0
	DynRelaCount   DynamicTag = 0x6ffffff9
	DynRelCount    DynamicTag = 0x6ffffffa
	DynFlags1      DynamicTag = 0x6ffffffb
	DynVerdef      DynamicTag = 0x6ffffffc
	DynVerdefNum   DynamicTag = 0x6ffffffd
	DynVerneed     DynamicTag = 0x6ffffffe
	DynVerneedNum  DynamicTag = 0x6fffffff
)

var dynamicTagNames = map[DynamicTag]string{
	DynNull:         "NULL",
	DynNeeded:       "NEEDED",
	DynPLTRelSize:   "PLTRELSZ",
	DynPLTGOT:       "PLTGOT",
	DynHash:         "HASH",
	DynStrTab:       "STRTAB",
	DynSymTab:       "SYMTAB",
	DynRela:         "RELA",
	DynRelaSize:     "RELASZ",
	DynRelaEnt:      "RELAENT",
	DynStrSize:      "STRSZ",
	DynSymEnt:       "SYMENT",
	DynInit:         "INIT",
	DynFini:         "FINI",
	DynSOName:       "SONAME",
	DynRPath:        "RPATH",
	DynSymbolic:     "SYMBOLIC",
	DynRel:          "REL",
	DynRelSize:      "RELSZ",
	DynRelEnt:       "RELENT",
	DynPLTRel:       "PLTREL",
	DynDebug:        "DEBUG",
	DynTextRel:      "TEXTREL",
	DynJmpRel:       "JMPREL",
	DynBindNow:      "BIND_NOW",
	DynInitArray:    "INIT_ARRAY",
	DynFiniArray:    "FINI_ARRAY",
	DynInitArraySz:  "INIT_ARRAYSZ",
	DynFiniArraySz:  "FINI_ARRAYSZ",
	DynRunPath:      "RUNPATH",
	DynFlags:        "FLAGS",
	DynPreinitArray: "PREINIT_ARRAY",
	DynPreinitArrSz: "PREINIT_ARRAYSZ",
	DynGNUHash:      "GNU_HASH",
	DynVersym:       "VERSYM",
	DynRelaCount:    "RELACOUNT",
	DynRelCount:     "RELCOUNT",
	DynFlags1:       "FLAGS_1",
	DynVerdef:       "VERDEF",
	DynVerdefNum:    "VERDEFNUM",
	DynVerneed:      "VERNEED",
	DynVerneedNum:   "VERNEEDNUM",
}

func (t DynamicTag) String() string {
	if name, ok := dynamicTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("[%#x]", int64(t))
}

// IsVendor reports whether t lies in the GNU/vendor extension range.
func (t DynamicTag) IsVendor() bool {
	return t >= DynVendorLow
}

func unknown(v uint64) string {
	return fmt.Sprintf("[%d]", v)
}
