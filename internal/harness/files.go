package harness

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/pkg/fileutil"
	"github.com/kaiiiiiiiii/bridle/pkg/frontmatter"
)

// SkillFile is the instruction file inside every skill directory.
const SkillFile = "SKILL.md"

// EnsureProfileDir returns ErrNotFound when dir is not an existing directory.
func EnsureProfileDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(ErrNotFound, "%s", dir)
		}
		return errors.Wrap(err, "checking profile directory")
	}
	if !info.IsDir() {
		return errors.Wrapf(ErrNotFound, "%s is not a directory", dir)
	}
	return nil
}

// ErrUnsafeName indicates a resource name that cannot be used as a file name.
var ErrUnsafeName = errors.New("resource name is not a safe file name")

// CheckName rejects names that would escape their resource directory.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`+"\x00") {
		return errors.Wrapf(ErrUnsafeName, "%q", name)
	}
	return nil
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating directory")
	}
	return fileutil.AtomicWriteFile(path, data, 0o644)
}

// ReadJSON decodes the JSON file at path into v. found is false, with a
// nil error, when the file does not exist.
func ReadJSON(path string, v any) (found bool, err error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, errors.Wrapf(err, "parsing %s", filepath.Base(path))
	}
	return true, nil
}

// MergeJSON loads the JSON object at path (or an empty one), lets edit
// modify it and writes it back with sorted keys.
func MergeJSON(path string, edit func(doc map[string]any) error) error {
	doc := make(map[string]any)
	if _, err := ReadJSON(path, &doc); err != nil {
		return err
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	if err := edit(doc); err != nil {
		return err
	}
	data, err := fileutil.MarshalJSON(doc)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// Object returns doc[key] as a JSON object, creating it when absent or not
// an object.
func Object(doc map[string]any, key string) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	m := make(map[string]any)
	doc[key] = m
	return m
}

// ToJSONValue round-trips v through JSON so typed values can be merged
// into a generic document.
func ToJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarkdownFile is one named Markdown document.
type MarkdownFile struct {
	// Name is the file name without the .md extension.
	Name    string
	Content string
}

// ReadMarkdownDir reads every *.md file directly inside dir, sorted by
// name. A missing dir yields no files.
func ReadMarkdownDir(dir string) ([]MarkdownFile, error) {
	return readDir(dir, ".md")
}

// ReadDirExt reads every file with extension ext directly inside dir,
// sorted by name. A missing dir yields no files.
func ReadDirExt(dir, ext string) ([]MarkdownFile, error) {
	return readDir(dir, ext)
}

func readDir(dir, ext string) ([]MarkdownFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var files []MarkdownFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		data, err := fileutil.ReadFileWithLimit(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", e.Name())
		}
		files = append(files, MarkdownFile{
			Name:    strings.TrimSuffix(e.Name(), ext),
			Content: string(data),
		})
	}
	return files, nil
}

type skillMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ReadSkills reads every <dir>/<skill>/SKILL.md. The skill name is the
// frontmatter name, or the directory name when the frontmatter has none.
// Other files in the skill directory are carried in Skill.Files.
func ReadSkills(dir string) ([]*canonical.Skill, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var skills []*canonical.Skill
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		skillDir := filepath.Join(dir, e.Name())
		data, err := fileutil.ReadFileWithLimit(filepath.Join(skillDir, SkillFile))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, "reading skill %s", e.Name())
		}

		var meta skillMeta
		if _, err := frontmatter.Parse(strings.NewReader(string(data)), &meta); err != nil {
			return nil, errors.Wrapf(err, "parsing skill %s", e.Name())
		}
		name := meta.Name
		if name == "" {
			name = e.Name()
		}

		files, err := readSkillFiles(skillDir)
		if err != nil {
			return nil, errors.Wrapf(err, "reading skill %s", e.Name())
		}

		skills = append(skills, &canonical.Skill{
			Name:        name,
			Description: meta.Description,
			Content:     string(data),
			Files:       files,
		})
	}
	return skills, nil
}

func readSkillFiles(skillDir string) (map[string][]byte, error) {
	var files map[string][]byte
	err := filepath.WalkDir(skillDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(skillDir, path)
		if err != nil {
			return err
		}
		if rel == SkillFile {
			return nil
		}
		data, err := fileutil.ReadFileWithLimit(path)
		if err != nil {
			return err
		}
		if files == nil {
			files = make(map[string][]byte)
		}
		files[filepath.ToSlash(rel)] = data
		return nil
	})
	return files, err
}

// WriteSkills writes each skill to <dir>/<name>/, replacing any previous
// directory of the same name.
func WriteSkills(dir string, skills []*canonical.Skill) error {
	for _, s := range skills {
		if err := CheckName(s.Name); err != nil {
			return err
		}
		skillDir := filepath.Join(dir, s.Name)
		if err := os.RemoveAll(skillDir); err != nil {
			return errors.Wrapf(err, "replacing skill %s", s.Name)
		}

		content := []byte(s.Content)
		if s.Content == "" {
			var err error
			content, err = frontmatter.Format(skillMeta{Name: s.Name, Description: s.Description}, "")
			if err != nil {
				return errors.Wrapf(err, "formatting skill %s", s.Name)
			}
		}
		if err := WriteFile(filepath.Join(skillDir, SkillFile), content); err != nil {
			return errors.Wrapf(err, "writing skill %s", s.Name)
		}

		for _, rel := range SortedKeys(s.Files) {
			if err := WriteFile(filepath.Join(skillDir, filepath.FromSlash(rel)), s.Files[rel]); err != nil {
				return errors.Wrapf(err, "writing skill %s file %s", s.Name, rel)
			}
		}
	}
	return nil
}

type commandMeta struct {
	Description string `yaml:"description"`
}

// ParseCommand builds a command from a Markdown file. Content keeps the
// whole file, frontmatter included.
func ParseCommand(f MarkdownFile) (*canonical.Command, error) {
	var meta commandMeta
	if _, err := frontmatter.Parse(strings.NewReader(f.Content), &meta); err != nil {
		return nil, errors.Wrapf(err, "parsing command %s", f.Name)
	}
	return &canonical.Command{Name: f.Name, Description: meta.Description, Content: f.Content}, nil
}

// CommandMarkdown renders a command as a Markdown document. Content that
// already starts with frontmatter is used as is; otherwise a description
// header is added when there is a description.
func CommandMarkdown(c *canonical.Command) ([]byte, error) {
	if _, _, err := frontmatter.Split([]byte(c.Content)); err == nil || c.Description == "" {
		return []byte(c.Content), nil
	}
	return frontmatter.Format(commandMeta{Description: c.Description}, c.Content)
}

// CommandBody returns the command template without any frontmatter.
func CommandBody(c *canonical.Command) string {
	_, body, err := frontmatter.Split([]byte(c.Content))
	if err != nil {
		return c.Content
	}
	return strings.TrimLeft(string(body), "\r\n")
}

// WriteMarkdownDir writes each file to <dir>/<name>.md.
func WriteMarkdownDir(dir string, files []MarkdownFile) error {
	for _, f := range files {
		if err := CheckName(f.Name); err != nil {
			return err
		}
		if err := WriteFile(filepath.Join(dir, f.Name+".md"), []byte(f.Content)); err != nil {
			return errors.Wrapf(err, "writing %s", f.Name)
		}
	}
	return nil
}
