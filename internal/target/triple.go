package target

import (
	"fmt"
	"strings"
)

// Triple is a parsed arch-vendor-os[-env] string.
type Triple struct {
	Arch   string
	Vendor string
	OS     string
	Env    string
}

var archAliases = map[string]string{
	"amd64": "x86_64",
	"x64":   "x86_64",
	"arm64": "aarch64",
	"i386":  "i686",
	"i486":  "i686",
	"i586":  "i686",
	"x86":   "i686",
	"wasm":  "wasm32",
}

// osPrefixes maps the leading text of an OS component to its canonical name.
// Version suffixes such as "macosx14.0" (matched by "macos") or "freebsd14" are dropped.
var osPrefixes = []struct{ prefix, os string }{
	{"linux", "linux"},
	{"darwin", "darwin"},
	{"macos", "darwin"},
	{"windows", "windows"},
	{"win32", "windows"},
	{"freebsd", "freebsd"},
	{"wasip1", "wasi"},
	{"wasi", "wasi"},
	{"none", "none"},
}

func canonicalOS(s string) (string, bool) {
	for _, p := range osPrefixes {
		if strings.HasPrefix(s, p.prefix) {
			return p.os, true
		}
	}
	return "", false
}

// ParseTriple splits s into its components. Architecture aliases are
// normalized (amd64 becomes x86_64) and the OS is reduced to its family.
func ParseTriple(s string) (Triple, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Triple{}, fmt.Errorf("empty target triple")
	}
	parts := strings.Split(s, "-")
	for _, p := range parts {
		if p == "" {
			return Triple{}, fmt.Errorf("malformed target triple %q", s)
		}
	}
	t := Triple{Arch: parts[0], Vendor: "unknown"}
	if alias, ok := archAliases[t.Arch]; ok {
		t.Arch = alias
	}
	rest := parts[1:]
	osIdx := -1
	for i, p := range rest {
		if name, ok := canonicalOS(p); ok {
			t.OS = name
			osIdx = i
			break
		}
	}
	switch {
	case osIdx >= 0:
		if osIdx > 0 {
			t.Vendor = rest[0]
		}
		if osIdx+1 < len(rest) {
			t.Env = strings.Join(rest[osIdx+1:], "-")
		}
	case t.Arch == "wasm32":
		// wasm32-unknown-unknown
		t.OS = "none"
	case len(rest) > 0 && rest[len(rest)-1] == "elf":
		// bare-metal spellings like x86_64-elf
		t.OS = "none"
		t.Env = "elf"
		if len(rest) > 1 {
			t.Vendor = rest[0]
		}
	default:
		return Triple{}, fmt.Errorf("target triple %q has no recognizable operating system", s)
	}
	return t, nil
}

// String returns the canonical spelling arch-vendor-os[-env].
func (t Triple) String() string {
	s := t.Arch + "-" + t.Vendor + "-" + t.OS
	if t.Env != "" {
		s += "-" + t.Env
	}
	return s
}
