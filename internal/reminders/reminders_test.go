package reminders

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"# groceries",
		"",
		"[x] Buy milk",
		"[X]   Call mom  ",
		"[!] Pay rent",
		"[ ] Water plants",
		"Plain item",
		"   ",
		"[?] odd prefix",
	}, "\n")

	got, err := Parse(strings.NewReader(input), 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []Reminder{
		{"Buy milk", Normal, Done},
		{"Call mom", Normal, Done},
		{"Pay rent", High, Pending},
		{"Water plants", Normal, Pending},
		{"Plain item", Normal, Pending},
		{"[?] odd prefix", Normal, Pending},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d reminders, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParse_StopsAtMax(t *testing.T) {
	input := "a\n# skip\nb\nc\nd\n"
	got, err := Parse(strings.NewReader(input), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Text != "b" {
		t.Errorf("got %+v", got)
	}
}

func TestPrefix(t *testing.T) {
	cases := []struct {
		r    Reminder
		want string
	}{
		{Reminder{Status: Done, Priority: High}, "[x]"},
		{Reminder{Status: Pending, Priority: High}, "[!]"},
		{Reminder{Status: Pending, Priority: Normal}, "[ ]"},
	}
	for _, tc := range cases {
		if got := tc.r.Prefix(); got != tc.want {
			t.Errorf("Prefix(%+v) = %q, want %q", tc.r, got, tc.want)
		}
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt"), 6); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.txt")
	if err := os.WriteFile(path, []byte("[x] done already"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Append(path, "  renew   passport ", High)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if r.Text != "renew passport" || r.Priority != High {
		t.Errorf("appended %+v", r)
	}
	if _, err := Append(path, "dentist", Priority("urgent")); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	want := "[x] done already\n[!] renew passport\n[ ] dentist\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}

	list, err := Load(path, 0)
	if err != nil || len(list) != 3 {
		t.Fatalf("Load = %v, %v", list, err)
	}
}

func TestAppend_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.txt")
	if _, err := Append(path, "   ", Normal); !errors.Is(err, ErrEmptyText) {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}
