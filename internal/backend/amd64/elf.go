package amd64

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"
)

// Section indices of the relocatable object.
const (
	shNull = iota
	shText
	shNoteStack
	shSymtab
	shStrtab
	shShstrtab
	shCount
)

const (
	ehdrSize  = 64
	shdrSize  = 64
	symSize   = 24
	textAlign = 16
)

// symbol is a function placed in .text.
type symbol struct {
	name   string
	offset int
	size   int
	global bool
}

// strtab builds a NUL-separated string table. Index 0 is the empty string.
type strtab struct {
	buf bytes.Buffer
}

func newStrtab() *strtab {
	t := &strtab{}
	t.buf.WriteByte(0)
	return t
}

func (t *strtab) add(s string) (uint32, error) {
	off, err := safecast.Conv[uint32](t.buf.Len())
	if err != nil {
		return 0, err
	}
	t.buf.WriteString(s)
	t.buf.WriteByte(0)
	return off, nil
}

func align(n, a int) int { return (n + a - 1) &^ (a - 1) }

// writeELF lays out an ELF64 little-endian relocatable object:
// header, .text, symbol table, string tables, then section headers.
// Locals precede globals in .symtab as the format requires.
func writeELF(file string, text []byte, syms []symbol) ([]byte, error) {
	strs := newStrtab()
	shstrs := newStrtab()

	var names [shCount]uint32
	for i, n := range []string{"", ".text", ".note.GNU-stack", ".symtab", ".strtab", ".shstrtab"} {
		if i == 0 {
			continue
		}
		off, err := shstrs.add(n)
		if err != nil {
			return nil, err
		}
		names[i] = off
	}

	fileName, err := strs.add(file)
	if err != nil {
		return nil, err
	}
	table := []elf.Sym64{
		{},
		{Name: fileName, Info: elf.ST_INFO(elf.STB_LOCAL, elf.STT_FILE), Shndx: uint16(elf.SHN_ABS)},
		{Info: elf.ST_INFO(elf.STB_LOCAL, elf.STT_SECTION), Shndx: shText},
	}
	var globals []elf.Sym64
	for _, s := range syms {
		name, err := strs.add(s.name)
		if err != nil {
			return nil, err
		}
		value, err := safecast.Conv[uint64](s.offset)
		if err != nil {
			return nil, err
		}
		size, err := safecast.Conv[uint64](s.size)
		if err != nil {
			return nil, err
		}
		sym := elf.Sym64{Name: name, Shndx: shText, Value: value, Size: size}
		if s.global {
			sym.Info = elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC)
			globals = append(globals, sym)
			continue
		}
		sym.Info = elf.ST_INFO(elf.STB_LOCAL, elf.STT_FUNC)
		table = append(table, sym)
	}
	firstGlobal, err := safecast.Conv[uint32](len(table))
	if err != nil {
		return nil, err
	}
	table = append(table, globals...)

	textOff := ehdrSize
	symOff := align(textOff+len(text), 8)
	symLen := len(table) * symSize
	strOff := symOff + symLen
	shstrOff := strOff + strs.buf.Len()
	shOff := align(shstrOff+shstrs.buf.Len(), 8)

	u64 := func(n int) uint64 {
		v, _ := safecast.Conv[uint64](n) // offsets are never negative
		return v
	}
	sections := [shCount]elf.Section64{
		shText: {
			Name:      names[shText],
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
			Off:       u64(textOff),
			Size:      u64(len(text)),
			Addralign: textAlign,
		},
		shNoteStack: {
			Name:      names[shNoteStack],
			Type:      uint32(elf.SHT_PROGBITS),
			Off:       u64(textOff + len(text)),
			Addralign: 1,
		},
		shSymtab: {
			Name:      names[shSymtab],
			Type:      uint32(elf.SHT_SYMTAB),
			Off:       u64(symOff),
			Size:      u64(symLen),
			Link:      shStrtab,
			Info:      firstGlobal,
			Addralign: 8,
			Entsize:   symSize,
		},
		shStrtab: {
			Name:      names[shStrtab],
			Type:      uint32(elf.SHT_STRTAB),
			Off:       u64(strOff),
			Size:      u64(strs.buf.Len()),
			Addralign: 1,
		},
		shShstrtab: {
			Name:      names[shShstrtab],
			Type:      uint32(elf.SHT_STRTAB),
			Off:       u64(shstrOff),
			Size:      u64(shstrs.buf.Len()),
			Addralign: 1,
		},
	}

	hdr := elf.Header64{
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     u64(shOff),
		Ehsize:    ehdrSize,
		Shentsize: shdrSize,
		Shnum:     shCount,
		Shstrndx:  shShstrtab,
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	hdr.Ident[elf.EI_OSABI] = byte(elf.ELFOSABI_NONE)

	var out bytes.Buffer
	out.Grow(shOff + shCount*shdrSize)
	w := func(v any) {
		if err == nil {
			err = binary.Write(&out, binary.LittleEndian, v)
		}
	}
	pad := func(to int) {
		for out.Len() < to {
			out.WriteByte(0)
		}
	}
	w(&hdr)
	out.Write(text)
	pad(symOff)
	w(table)
	out.Write(strs.buf.Bytes())
	out.Write(shstrs.buf.Bytes())
	pad(shOff)
	w(sections[:])
	if err != nil {
		return nil, fmt.Errorf("encode elf: %w", err)
	}
	return out.Bytes(), nil
}
