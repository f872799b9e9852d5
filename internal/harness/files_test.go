package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
)

func TestEnsureProfileDir(t *testing.T) {
	dir := t.TempDir()
	if err := EnsureProfileDir(dir); err != nil {
		t.Errorf("EnsureProfileDir(existing) = %v", err)
	}
	if err := EnsureProfileDir(filepath.Join(dir, "missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("EnsureProfileDir(missing) = %v, want ErrNotFound", err)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureProfileDir(file); !errors.Is(err, ErrNotFound) {
		t.Errorf("EnsureProfileDir(file) = %v, want ErrNotFound", err)
	}
}

func TestMergeJSON_PreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"permissions":{"allow":["Bash"]},"model":"old"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	err := MergeJSON(path, func(doc map[string]any) error {
		doc["model"] = "new"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(path)
	want := "{\n  \"model\": \"new\",\n  \"permissions\": {\n    \"allow\": [\n      \"Bash\"\n    ]\n  }\n}\n"
	if string(got) != want {
		t.Errorf("merged = %q, want %q", got, want)
	}
}

func TestSkillsRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "skills")
	in := []*canonical.Skill{
		{
			Name:    "code-review",
			Content: "---\nname: code-review\ndescription: Reviews code\n---\n\nSteps.\n",
			Files:   map[string][]byte{"scripts/check.sh": []byte("#!/bin/sh\n")},
		},
		{Name: "bare", Description: "No content"},
	}
	if err := WriteSkills(dir, in); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSkills(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadSkills() = %d skills", len(got))
	}
	// sorted by directory name
	if got[0].Name != "bare" || got[0].Description != "No content" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Name != "code-review" || got[1].Description != "Reviews code" || got[1].Content != in[0].Content {
		t.Errorf("got[1] = %+v", got[1])
	}
	if string(got[1].Files["scripts/check.sh"]) != "#!/bin/sh\n" {
		t.Errorf("files = %v", got[1].Files)
	}
}

func TestReadSkills_NameFallsBackToDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Code Review Guide", SkillFile)
	if err := WriteFile(path, []byte("# Guide\n")); err != nil {
		t.Fatal(err)
	}
	// directory without SKILL.md is ignored
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSkills(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Code Review Guide" {
		t.Errorf("ReadSkills() = %+v", got)
	}
}

func TestCheckName(t *testing.T) {
	for _, bad := range []string{"", ".", "..", "a/b", `a\b`} {
		if err := CheckName(bad); !errors.Is(err, ErrUnsafeName) {
			t.Errorf("CheckName(%q) = %v", bad, err)
		}
	}
	if err := CheckName("Code Review"); err != nil {
		t.Errorf("CheckName(Code Review) = %v", err)
	}
}

func TestCommandMarkdown(t *testing.T) {
	tests := []struct {
		name string
		cmd  canonical.Command
		want string
	}{
		{"keeps frontmatter", canonical.Command{Description: "d", Content: "---\ndescription: d\n---\nRun.\n"}, "---\ndescription: d\n---\nRun.\n"},
		{"adds description", canonical.Command{Description: "Deploy", Content: "Run.\n"}, "---\ndescription: Deploy\n---\n\nRun.\n"},
		{"plain", canonical.Command{Content: "Run.\n"}, "Run.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CommandMarkdown(&tt.cmd)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("CommandMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := CommandBody(&canonical.Command{Content: "---\ndescription: d\n---\n\nRun.\n"}); got != "Run.\n" {
		t.Errorf("CommandBody() = %q", got)
	}
}

type stubAdapter struct{ id string }

func (s stubAdapter) ID() string { return s.id }
func (s stubAdapter) Extract(_ context.Context, _ string) (*canonical.Profile, error) {
	return canonical.New(), nil
}
func (s stubAdapter) Write(_ context.Context, _ string, _ *canonical.Profile) error { return nil }

func TestResolver(t *testing.T) {
	r := NewResolver(stubAdapter{"a"}, stubAdapter{"b"}, stubAdapter{"a"})
	if ids := r.IDs(); len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("IDs() = %v", ids)
	}
	if _, err := r.Get("b"); err != nil {
		t.Errorf("Get(b) = %v", err)
	}
	if _, err := r.Get("zed"); !errors.Is(err, ErrUnknownHarness) {
		t.Errorf("Get(zed) = %v", err)
	}
}

func TestWriteError(t *testing.T) {
	if WriteError(nil, "x") != nil {
		t.Error("WriteError(nil) != nil")
	}
	err := WriteError(os.ErrPermission, "writing settings.json")
	if !errors.Is(err, ErrWrite) || !errors.Is(err, os.ErrPermission) {
		t.Errorf("WriteError() = %v, want ErrWrite and cause", err)
	}
}
