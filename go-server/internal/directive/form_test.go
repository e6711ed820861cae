package directive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diffLines(a, b string) []int {
	al, bl := strings.Split(a, "\n"), strings.Split(b, "\n")
	var changed []int
	for i := range al {
		if i >= len(bl) || al[i] != bl[i] {
			changed = append(changed, i)
		}
	}
	return changed
}

func TestNewFormDefaults(t *testing.T) {
	f := NewForm()
	if f.Text() != defaultDocument {
		t.Errorf("fresh form text mismatch:\n%s", f.Text())
	}
	if f.Copied() {
		t.Error("fresh form should not be copied")
	}
}

func TestToggleClaudeBotChangesOnlyItsLine(t *testing.T) {
	f := NewForm()
	before := f.Text()

	if err := f.Toggle("ClaudeBot"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	after := f.Text()

	changed := diffLines(before, after)
	if len(changed) != 1 {
		t.Fatalf("expected exactly one changed line, got %v", changed)
	}
	lines := strings.Split(after, "\n")
	if lines[changed[0]-1] != "User-Agent: ClaudeBot" || lines[changed[0]] != "Allow: /" {
		t.Errorf("unexpected change at line %d: %q", changed[0], lines[changed[0]])
	}
}

func TestDoubleToggleIsIdentity(t *testing.T) {
	f := NewForm()
	for _, name := range []string{"OpenAI", "Perplexity", "ClaudeBot", "Google-Extended", "CCBot"} {
		before := f.Text()
		if err := f.Toggle(name); err != nil {
			t.Fatal(err)
		}
		if f.Text() == before {
			t.Errorf("%s: single toggle did not change the text", name)
		}
		if err := f.Toggle(name); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(before, f.Text()); diff != "" {
			t.Errorf("%s: double toggle (-want +got):\n%s", name, diff)
		}
	}
}

func TestToggleUnknownAgent(t *testing.T) {
	f := NewForm()
	calls := 0
	f.Subscribe(func(string) { calls++ })

	err := f.Toggle("GPTBot")
	if !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
	if calls != 0 {
		t.Error("failed mutation must not notify subscribers")
	}
	if f.Text() != defaultDocument {
		t.Error("failed mutation changed the text")
	}
	if err := f.SetAllow("gptbot", true); !errors.Is(err, ErrUnknownAgent) {
		t.Errorf("SetAllow: expected ErrUnknownAgent, got %v", err)
	}
}

func TestMutationsRecomputeAndNotify(t *testing.T) {
	f := NewForm()
	var seen []string
	f.Subscribe(func(text string) { seen = append(seen, text) })

	f.SetSiteURL("https://x.com")
	f.SetContact(" a@b.com ")
	if err := f.SetAllow("CCBot", true); err != nil {
		t.Fatal(err)
	}

	if len(seen) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(seen))
	}
	if seen[2] != f.Text() {
		t.Error("last notification should carry the current text")
	}
	s := f.State()
	if f.Text() != Generate(s.SiteURL, s.Contact, s.Policy) {
		t.Error("text does not reflect state")
	}
	if !strings.HasSuffix(f.Text(), "# Contact: a@b.com") {
		t.Errorf("contact missing:\n%s", f.Text())
	}
}

func TestStateIsSnapshot(t *testing.T) {
	f := NewForm()
	s := f.State()
	s.Policy["OpenAI"] = false
	if !f.Allowed("OpenAI") {
		t.Error("mutating a snapshot leaked into the form")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	f := NewForm()
	f.SetSiteURL("https://x.com")
	f.SetContact("a@b.com")
	_ = f.Toggle("OpenAI")
	f.Reset()
	if f.Text() != defaultDocument {
		t.Errorf("Reset did not restore defaults:\n%s", f.Text())
	}
}

func TestNewFormFromStateDropsUnknownAgents(t *testing.T) {
	f := NewFormFromState(State{Policy: map[string]bool{"GPTBot": true, "CCBot": true}})
	s := f.State()
	if _, ok := s.Policy["GPTBot"]; ok {
		t.Error("unknown agent kept in policy")
	}
	if !s.Policy["CCBot"] || !s.Policy["OpenAI"] || s.Policy["ClaudeBot"] {
		t.Errorf("unexpected policy %v", s.Policy)
	}
}

func TestCopySuccessAndFailure(t *testing.T) {
	f := NewForm()

	var got string
	if ok := f.Copy(func(s string) error { got = s; return nil }); !ok {
		t.Fatal("Copy should succeed")
	}
	if got != f.Text() || !f.Copied() {
		t.Error("Copy did not write the text or set the indicator")
	}
	if CopyLabel(f.Copied()) != "Copied!" {
		t.Errorf("label = %q", CopyLabel(f.Copied()))
	}

	if ok := f.Copy(func(string) error { return errors.New("no clipboard") }); ok {
		t.Fatal("Copy should fail")
	}
	if f.Copied() || CopyLabel(f.Copied()) != "Copy" {
		t.Error("failure must reset the indicator")
	}
}

func TestMutationResetsCopied(t *testing.T) {
	f := NewForm()
	f.Copy(func(string) error { return nil })
	f.SetContact("a@b.com")
	if f.Copied() {
		t.Error("editing the form should clear the copied indicator")
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteFile(dir, defaultDocument)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if filepath.Base(path) != "LLMs.txt" {
		t.Errorf("file name = %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != defaultDocument {
		t.Errorf("file content mismatch:\n%s", data)
	}
}
