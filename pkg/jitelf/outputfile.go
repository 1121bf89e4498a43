package jitelf

import (
	"bytes"
	"debug/elf"
	"fmt"

	"jitelf/pkg/utils"
)

// OutputFile reads back an object emitted by WriteEntries: the file header,
// the section-header table, the dynamic symbol table and its names. Just
// enough of the format to list what the object exports.
type OutputFile struct {
	File        *File
	Sections    []SectionHeader
	FirstGlobal int64
	SymTable    []Sym64
	SymStrTable []byte
	StrTable    []byte
}

func NewOutputFile(file *File) *OutputFile {
	obj := &OutputFile{File: file}

	if len(file.Contents) < int(ELFHeaderSize) {
		utils.Fatal("ELF file too small!")
	}

	if !CheckMagic(file.Contents) {
		utils.Fatal("Not an ELF file!")
	}

	hdr := utils.Read[Header64](file.Contents)

	contents := file.Contents[hdr.Shoff:]
	obj.Sections = make([]SectionHeader, 0, hdr.Shnum)
	for i := uint16(0); i < hdr.Shnum; i++ {
		obj.Sections = append(obj.Sections, utils.Read[SectionHeader](contents))
		contents = contents[SectionHeaderSize:]
	}

	obj.StrTable = obj.GetBytesFromIndex(uint64(hdr.Shstrndx))

	return obj
}

func (o *OutputFile) Parse() {
	symtab := o.FindSection(uint32(elf.SHT_DYNSYM))
	if symtab == nil {
		return
	}
	o.FirstGlobal = int64(symtab.Info)
	o.FillUpSymbols(symtab)
	o.SymStrTable = o.GetBytesFromIndex(uint64(symtab.Link))
}

func (o *OutputFile) GetBytesFromShdr(hdr *SectionHeader) []byte {
	start := hdr.Offset
	end := hdr.Offset + hdr.Size
	if uint64(len(o.File.Contents)) < end {
		utils.Fatal(
			fmt.Sprintf("Section header is out of range: %d", hdr.Offset),
		)
	}
	return o.File.Contents[start:end]
}

func (o *OutputFile) GetBytesFromIndex(idx uint64) []byte {
	return o.GetBytesFromShdr(&o.Sections[idx])
}

func GetNameFromTable(strTable []byte, offset uint32) string {
	length := uint32(bytes.Index(strTable[offset:], []byte{0}))
	return string(strTable[offset : offset+length])
}

func (o *OutputFile) FindSection(type_ uint32) *SectionHeader {
	for i := 0; i < len(o.Sections); i++ {
		shdr := &o.Sections[i]
		if shdr.Type == type_ {
			return shdr
		}
	}

	return nil
}

func (o *OutputFile) FillUpSymbols(s *SectionHeader) {
	symContents := o.GetBytesFromShdr(s)
	symNumber := len(symContents) / int(SymbolSize)

	o.SymTable = make([]Sym64, 0, symNumber)

	for symNumber > 0 {
		o.SymTable = append(o.SymTable, utils.Read[Sym64](symContents))
		symContents = symContents[SymbolSize:]
		symNumber--
	}
}

type SymbolInfo struct {
	Name    string
	Address uint64
	Size    uint64
}

// Symbols returns the defined symbols in table order, skipping the
// reserved null entry.
func (o *OutputFile) Symbols() []SymbolInfo {
	var syms []SymbolInfo
	for _, sym := range o.SymTable[o.FirstGlobal:] {
		syms = append(syms, SymbolInfo{
			Name:    GetNameFromTable(o.SymStrTable, sym.Name),
			Address: sym.Value,
			Size:    sym.Size,
		})
	}
	return syms
}
