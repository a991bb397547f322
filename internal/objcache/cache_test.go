package objcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestCache_PutGet(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key("define void @main()", "x86_64-unknown-linux-gnu", "native")
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("empty cache Get = %v, %v", ok, err)
	}
	want := &Entry{Module: "arith", Triple: "x86_64-unknown-linux-gnu", Backend: "native", Object: []byte{0x7f, 'E', 'L', 'F'}}
	if err := c.Put(key, want); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if got.Module != want.Module || string(got.Object) != string(want.Object) || got.Created.IsZero() {
		t.Errorf("got %+v", got)
	}
	entries, err := os.ReadDir(filepath.Join(c.Dir(), "objs"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestKey_Distinct(t *testing.T) {
	base := Key("ir", "x86_64-unknown-linux-gnu", "native")
	for _, k := range []Digest{
		Key("ir2", "x86_64-unknown-linux-gnu", "native"),
		Key("ir", "aarch64-unknown-linux-gnu", "native"),
		Key("ir", "x86_64-unknown-linux-gnu", "llvm"),
	} {
		if k == base {
			t.Errorf("key collision for %s", k)
		}
	}
	if base != Key("ir", "x86_64-unknown-linux-gnu", "native") {
		t.Error("key not deterministic")
	}
}

func TestCache_SchemaMismatchIsMiss(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key("ir", "t", "b")
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := msgpack.Marshal(&Entry{Schema: schemaVersion + 1, Object: []byte{1}})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Errorf("Get = %v, %v; want miss", ok, err)
	}
}

func TestCache_DropAll(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	key := Key("ir", "t", "b")
	if err := c.Put(key, &Entry{Object: []byte{1}}); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Error("entry survived DropAll")
	}
	if err := c.Put(key, &Entry{Object: []byte{2}}); err != nil {
		t.Errorf("Put after DropAll: %v", err)
	}
}
