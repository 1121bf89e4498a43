package jitelf

import (
	"debug/elf"
	"io"

	"jitelf/pkg/utils"
)

// CodeEntry is one compiled function: its symbol name and machine code.
// Entries are laid out back to back in the text section, in input order.
type CodeEntry struct {
	Name string
	Code []byte
}

// WriteEntries serializes entries into a minimal ELF object on w. The
// object carries one global function symbol per entry so that external
// tooling can resolve sampled addresses inside generated code back to
// function names. Layout and sink errors are fatal; the output is either
// complete or the process aborts.
func WriteEntries(w io.Writer, entries []CodeEntry) {
	o := NewObject()
	o.initFileHeader()

	// Symbols are built before any of the sections.
	textEndAddress := TextStartAddress
	for _, entry := range entries {
		o.Dynsym.Insert(Sym64{
			Name:  o.Dynstr.Insert(entry.Name),
			Info:  elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC),
			Shndx: SectionText,
			Value: textEndAddress,
			Size:  uint64(len(entry.Code)),
		})
		textEndAddress += uint64(len(entry.Code))
	}
	textSize := textEndAddress - TextStartAddress

	// The headers are confined to the zeroth page; sections begin on the
	// next page boundary.
	o.sectionOffset = uint64(HeaderStop)
	headerPadding := o.alignOffset()
	utils.Assertf(o.sectionOffset == TextStartAddress,
		"ELF headers went past the zeroth page: %#x", o.sectionOffset)

	// The null section needs no initialization.

	o.initTextSection(textSize)
	textPadding := o.alignOffset()

	o.initDynsymSection()
	o.initDynstrSection()
	o.initShstrtabSection()

	o.initTextSegment()
	o.initReadonlySegment()

	out := NewWriter(w)
	out.Write(o.FileHeader)
	out.Write(o.SectionHeaders)
	out.Write(o.SegmentHeaders)
	out.Pad(headerPadding)

	for _, entry := range entries {
		out.WriteBytes(entry.Code)
	}
	out.Pad(textPadding)

	out.WriteBytes(o.Dynsym.Bytes())
	out.WriteBytes(o.Dynstr.Bytes())
	out.WriteBytes(o.Shstrtab.Bytes())
}

func (o *Object) initFileHeader() {
	hdr := &o.FileHeader
	WriteMagic(hdr.Ident[:])
	hdr.Ident[elf.EI_CLASS] = uint8(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = uint8(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = uint8(elf.EV_CURRENT)
	hdr.Ident[elf.EI_OSABI] = uint8(elf.ELFOSABI_NONE)
	hdr.Ident[elf.EI_ABIVERSION] = 0

	hdr.Type = uint16(elf.ET_DYN)
	hdr.Machine = uint16(elf.EM_X86_64)
	hdr.Version = uint32(elf.EV_CURRENT)
	hdr.Shoff = uint64(ELFHeaderSize)
	hdr.Phoff = uint64(ELFHeaderSize + SectionCount*SectionHeaderSize)
	hdr.Ehsize = uint16(ELFHeaderSize)
	hdr.Phentsize = uint16(ProgramHeaderSize)
	hdr.Phnum = SegmentCount
	hdr.Shentsize = uint16(SectionHeaderSize)
	hdr.Shnum = SectionCount
	hdr.Shstrndx = SectionShstrtab
}

// Program bits, loaded and executable. The text follows the header region
// after padding out the zeroth page.
func (o *Object) initTextSection(textSize uint64) {
	utils.Assertf(o.sectionOffset == utils.AlignTo(o.sectionOffset, PageSize),
		"text section starts at unaligned offset %#x", o.sectionOffset)

	hdr := o.Shdr(SectionText)
	hdr.Name = o.Shstrtab.Insert(".text")
	hdr.Type = uint32(elf.SHT_PROGBITS)
	hdr.Flags = uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR)
	hdr.Addr = o.sectionOffset
	hdr.Offset = o.sectionOffset
	hdr.Size = textSize
	hdr.Addralign = 0x10

	o.sectionOffset += hdr.Size
}

func (o *Object) initDynsymSection() {
	utils.Assertf(o.sectionOffset == utils.AlignTo(o.sectionOffset, PageSize),
		"dynsym section starts at unaligned offset %#x", o.sectionOffset)

	hdr := o.Shdr(SectionDynsym)
	hdr.Name = o.Shstrtab.Insert(".dynsym")
	hdr.Type = uint32(elf.SHT_DYNSYM)
	hdr.Flags = uint64(elf.SHF_ALLOC | elf.SHF_INFO_LINK)
	hdr.Addr = o.sectionOffset
	hdr.Offset = o.sectionOffset
	hdr.Size = o.Dynsym.Size()
	hdr.Link = SectionDynstr
	// Index of the first symbol past the reserved null entry.
	hdr.Info = 1
	hdr.Entsize = uint64(SymbolSize)

	o.sectionOffset += hdr.Size
}

func (o *Object) initDynstrSection() {
	hdr := o.Shdr(SectionDynstr)
	hdr.Name = o.Shstrtab.Insert(".dynstr")
	hdr.Type = uint32(elf.SHT_STRTAB)
	hdr.Flags = uint64(elf.SHF_ALLOC)
	hdr.Addr = o.sectionOffset
	hdr.Offset = o.sectionOffset
	hdr.Size = o.Dynstr.Size()

	o.sectionOffset += hdr.Size
}

// Shstrtab holds the section names themselves. File-only metadata, never
// mapped at runtime, so no Alloc flag and no address. Its own name must be
// inserted before the size is taken.
func (o *Object) initShstrtabSection() {
	hdr := o.Shdr(SectionShstrtab)
	hdr.Name = o.Shstrtab.Insert(".shstrtab")
	hdr.Type = uint32(elf.SHT_STRTAB)
	hdr.Offset = o.sectionOffset
	hdr.Size = o.Shstrtab.Size()

	o.sectionOffset += hdr.Size
}

func (o *Object) initTextSegment() {
	section := o.Shdr(SectionText)

	hdr := o.Phdr(SegmentText)
	hdr.Type = uint32(elf.PT_LOAD)
	hdr.Flags = uint32(elf.PF_X | elf.PF_R)
	hdr.Offset = section.Offset
	hdr.VAddr = section.Addr
	hdr.PAddr = section.Addr
	hdr.FileSize = section.Size
	hdr.MemSize = hdr.FileSize
	hdr.Align = PageSize
}

// The readonly segment maps dynsym and dynstr as one contiguous range, so
// dynsym must already sit directly before dynstr.
func (o *Object) initReadonlySegment() {
	dynsym := o.Shdr(SectionDynsym)
	dynstr := o.Shdr(SectionDynstr)
	utils.Assertf(dynsym.Addr < dynstr.Addr,
		"expecting dynsym at %#x before dynstr at %#x", dynsym.Addr, dynstr.Addr)

	hdr := o.Phdr(SegmentReadonly)
	hdr.Type = uint32(elf.PT_LOAD)
	hdr.Flags = uint32(elf.PF_R)
	hdr.Offset = dynsym.Offset
	hdr.VAddr = dynsym.Addr
	hdr.PAddr = dynsym.Addr
	hdr.FileSize = dynsym.Size + dynstr.Size
	hdr.MemSize = hdr.FileSize
	hdr.Align = PageSize
}
