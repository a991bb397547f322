package target

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
)

// ObjectFormat is the container format of emitted objects.
type ObjectFormat uint8

const (
	FormatELF ObjectFormat = iota + 1
	FormatMachO
	FormatCOFF
	FormatWasm
)

func (f ObjectFormat) String() string {
	switch f {
	case FormatELF:
		return "elf"
	case FormatMachO:
		return "macho"
	case FormatCOFF:
		return "coff"
	case FormatWasm:
		return "wasm"
	}
	return "unknown"
}

// Descriptor is the resolved, read-only description of a target.
type Descriptor struct {
	Triple      Triple
	DataLayout  string
	Format      ObjectFormat
	PointerSize int
}

// Name returns the canonical triple string.
func (d *Descriptor) Name() string { return d.Triple.String() }

type key struct{ arch, os string }

type entry struct {
	layout string
	format ObjectFormat
	ptr    int
}

const (
	layoutX8664ELF   = "e-m:e-p270:32:32-p271:32:32-p272:64:64-i64:64-i128:128-f80:128-n8:16:32:64-S128"
	layoutX8664MachO = "e-m:o-p270:32:32-p271:32:32-p272:64:64-i64:64-i128:128-f80:128-n8:16:32:64-S128"
	layoutX8664COFF  = "e-m:w-p270:32:32-p271:32:32-p272:64:64-i64:64-i128:128-f80:128-n8:16:32:64-S128"
	layoutA64ELF     = "e-m:e-i8:8:32-i16:16:32-i64:64-i128:128-n32:64-S128"
	layoutA64MachO   = "e-m:o-i64:64-i128:128-n32:64-S128"
	layoutA64COFF    = "e-m:w-p:64:64-i32:32-i64:64-i128:128-n32:64-S128"
	layoutRV64       = "e-m:e-p:64:64-i64:64-i128:128-n32:64-S128"
	layoutI686ELF    = "e-m:e-p:32:32-p270:32:32-p271:32:32-p272:64:64-i128:128-f64:32:64-f80:32-n8:16:32-S128"
	layoutI686COFF   = "e-m:x-p:32:32-p270:32:32-p271:32:32-p272:64:64-i64:64-i128:128-f80:32-n8:16:32-a:0:32-S32"
	layoutWasm32     = "e-m:e-p:32:32-p10:8:8-p20:8:8-i64:64-i128:128-n32:64-S128-ni:1:10:20"
)

var registry = map[key]entry{
	{"x86_64", "linux"}:    {layoutX8664ELF, FormatELF, 8},
	{"x86_64", "freebsd"}:  {layoutX8664ELF, FormatELF, 8},
	{"x86_64", "none"}:     {layoutX8664ELF, FormatELF, 8},
	{"x86_64", "darwin"}:   {layoutX8664MachO, FormatMachO, 8},
	{"x86_64", "windows"}:  {layoutX8664COFF, FormatCOFF, 8},
	{"aarch64", "linux"}:   {layoutA64ELF, FormatELF, 8},
	{"aarch64", "freebsd"}: {layoutA64ELF, FormatELF, 8},
	{"aarch64", "none"}:    {layoutA64ELF, FormatELF, 8},
	{"aarch64", "darwin"}:  {layoutA64MachO, FormatMachO, 8},
	{"aarch64", "windows"}: {layoutA64COFF, FormatCOFF, 8},
	{"riscv64", "linux"}:   {layoutRV64, FormatELF, 8},
	{"riscv64", "none"}:    {layoutRV64, FormatELF, 8},
	{"i686", "linux"}:      {layoutI686ELF, FormatELF, 4},
	{"i686", "windows"}:    {layoutI686COFF, FormatCOFF, 4},
	{"wasm32", "wasi"}:     {layoutWasm32, FormatWasm, 4},
	{"wasm32", "none"}:     {layoutWasm32, FormatWasm, 4},
}

// UnknownTargetError reports a triple with no registry entry.
type UnknownTargetError struct {
	Triple string
	Reason string
}

func (e *UnknownTargetError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unknown target triple %q", e.Triple)
	}
	return fmt.Sprintf("unknown target triple %q: %s", e.Triple, e.Reason)
}

var resolved sync.Map // canonical triple string -> *Descriptor

// Lookup resolves triple against the registry. Repeated lookups of the same
// canonical triple return the same *Descriptor.
func Lookup(triple string) (*Descriptor, error) {
	t, err := ParseTriple(triple)
	if err != nil {
		return nil, &UnknownTargetError{Triple: triple, Reason: err.Error()}
	}
	name := t.String()
	if d, ok := resolved.Load(name); ok {
		return d.(*Descriptor), nil
	}
	e, ok := registry[key{t.Arch, t.OS}]
	if !ok {
		return nil, &UnknownTargetError{Triple: triple, Reason: fmt.Sprintf("no backend for %s on %s", t.Arch, t.OS)}
	}
	d := &Descriptor{
		Triple:      t,
		DataLayout:  e.layout,
		Format:      e.format,
		PointerSize: e.ptr,
	}
	actual, _ := resolved.LoadOrStore(name, d)
	return actual.(*Descriptor), nil
}

// HostTriple returns the triple of the running process.
func HostTriple() string {
	return hostTriple(runtime.GOARCH, runtime.GOOS)
}

func hostTriple(goarch, goos string) string {
	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	case "386":
		arch = "i686"
	case "wasm":
		arch = "wasm32"
	}
	switch goos {
	case "linux":
		return arch + "-unknown-linux-gnu"
	case "darwin":
		return arch + "-apple-darwin"
	case "windows":
		return arch + "-pc-windows-msvc"
	case "wasip1":
		return arch + "-unknown-wasi"
	}
	return arch + "-unknown-" + goos
}

// Supported describes one registry row.
type Supported struct {
	Arch   string
	OS     string
	Format ObjectFormat
}

// All lists the registry sorted by arch then OS.
func All() []Supported {
	out := make([]Supported, 0, len(registry))
	for k, e := range registry {
		out = append(out, Supported{Arch: k.arch, OS: k.os, Format: e.format})
	}
	slices.SortFunc(out, func(a, b Supported) int {
		if a.Arch != b.Arch {
			if a.Arch < b.Arch {
				return -1
			}
			return 1
		}
		if a.OS < b.OS {
			return -1
		}
		if a.OS > b.OS {
			return 1
		}
		return 0
	})
	return out
}
