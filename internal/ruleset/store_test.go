package ruleset

import (
	"strings"
	"testing"

	"github.com/spf13/afero"

	blerrors "github.com/zxg-sec/blfilter/internal/errors"
)

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "rules.txt")

	set, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
	if store.Exists() {
		t.Error("Exists() = true for a missing file")
	}
}

func TestStore_LoadTrimsAndSkipsBlankLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "127.0.0.1\r\n\n  *.gov.cn  \n\t\nexample.com"
	if err := afero.WriteFile(fs, "rules.txt", []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := NewStore(fs, "rules.txt").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"127.0.0.1", "*.gov.cn", "example.com"}
	if got := set.Rules(); !equalStrings(got, want) {
		t.Errorf("Rules() = %q, want %q", got, want)
	}
}

func TestStore_SaveFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "data/rules.txt")

	if err := store.Save(New("a.com", "10.0.0.0/8")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := afero.ReadFile(fs, "data/rules.txt")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got, want := string(data), "a.com\n10.0.0.0/8"; got != want {
		t.Errorf("file content = %q, want %q", got, want)
	}
}

func TestStore_SaveEmptySet(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "rules.txt")

	if err := store.Save(New()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, _ := afero.ReadFile(fs, "rules.txt")
	if len(data) != 0 {
		t.Errorf("file content = %q, want empty", data)
	}
	if !store.Exists() {
		t.Error("Exists() = false after Save")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "rules.txt")

	set := New()
	set.Add("127.0.0.1", "*.gov.cn", "192.168.0.0/16")
	set.Remove(2)
	if _, err := set.Edit(1, "127.0.0.2"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(set); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"127.0.0.2", "192.168.0.0/16"}
	if got := loaded.Rules(); !equalStrings(got, want) {
		t.Errorf("Rules() = %q, want %q", got, want)
	}
}

func TestStore_RoundTripKeepsEveryAddedRule(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "rules.txt")

	set := New()
	set.Add("*.a\nb", "*.gov.cn", "10.0.0.0/8\r1.1.1.1")
	if err := store.Save(set); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := loaded.Rules(), set.Rules(); !equalStrings(got, want) {
		t.Errorf("Load() = %q, want the saved %q", got, want)
	}
}

func TestStore_LoadLongLine(t *testing.T) {
	fs := afero.NewMemMapFs()
	long := strings.Repeat("a", 100*1024) + ".com"
	if err := afero.WriteFile(fs, "rules.txt", []byte("127.0.0.1\n"+long), 0644); err != nil {
		t.Fatal(err)
	}

	set, err := NewStore(fs, "rules.txt").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	if got, _ := set.At(2); got != long {
		t.Errorf("At(2) has length %d, want %d", len(got), len(long))
	}
}

func TestStore_SaveReadOnlyFs(t *testing.T) {
	store := NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), "rules.txt")

	err := store.Save(New("a.com"))
	if err == nil {
		t.Fatal("Save() on a read-only filesystem should fail")
	}
	if !blerrors.Is(err, blerrors.ErrStoreWrite) {
		t.Errorf("error = %v, want ErrStoreWrite", err)
	}
	var storeErr *blerrors.StoreError
	if !blerrors.As(err, &storeErr) || storeErr.Path != "rules.txt" {
		t.Errorf("error = %#v, want *StoreError for rules.txt", err)
	}
}
