// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/kaiiiiiiiii/bridle/internal/canonical"
	"github.com/kaiiiiiiiii/bridle/internal/selection"
)

// Sentinel errors for resource selection.
var (
	ErrNoResources        = errors.New("no resources to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Item is one selectable resource.
type Item struct {
	Kind canonical.Kind
	Name string
	// Disabled marks MCP servers that are switched off in the source.
	Disabled bool
}

func (i Item) String() string {
	s := string(i.Kind) + ": " + i.Name
	if i.Disabled {
		s += " (disabled)"
	}
	return s
}

// Items lists the resources of p within kinds, in processing order.
// Disabled MCP servers are listed so they can be picked explicitly.
func Items(p *canonical.Profile, kinds []canonical.Kind) []Item {
	var items []Item
	for _, k := range canonical.Kinds() {
		if !slices.Contains(kinds, k) {
			continue
		}
		if k == canonical.KindMCP {
			for _, s := range p.MCPServers {
				items = append(items, Item{Kind: k, Name: s.Name, Disabled: !s.Enabled})
			}
			continue
		}
		for _, n := range p.Names(k) {
			items = append(items, Item{Kind: k, Name: n})
		}
	}
	return items
}

// Options turns picked items into filter options that keep exactly those
// resources. Picked names are exact entries, so disabled servers are
// re-enabled.
func Options(picked []Item) selection.Options {
	sel := make(selection.Selection)
	var include []canonical.Kind
	for _, it := range picked {
		sel.Add(it.Kind, it.Name)
		if !slices.Contains(include, it.Kind) {
			include = append(include, it.Kind)
		}
	}
	return selection.Options{Include: include, Selection: sel}
}

// Picker chooses a subset of items.
type Picker interface {
	Pick(items []Item) ([]Item, error)
}

// FuzzyPicker picks items with a full-screen fuzzy finder. It needs a
// terminal.
type FuzzyPicker struct {
	Header string
}

// Pick shows the finder; Tab marks items and Enter confirms.
func (f FuzzyPicker) Pick(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, ErrNoResources
	}
	header := f.Header
	if header == "" {
		header = "Select resources (Tab to mark, Enter to confirm)"
	}

	idx, err := fuzzyfinder.FindMulti(items,
		func(i int) string { return items[i].String() },
		fuzzyfinder.WithHeader(header),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, ErrSelectionCancelled
		}
		return nil, errors.Wrap(err, "running fuzzy finder")
	}
	slices.Sort(idx)

	out := make([]Item, 0, len(idx))
	for _, i := range idx {
		out = append(out, items[i])
	}
	return out, nil
}

// Selector handles line-based prompts.
type Selector struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return NewSelectorWithIO(os.Stdin, os.Stdout)
}

// NewSelectorWithIO creates a Selector with custom reader and writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// Pick lists items with numbers and reads a selection such as "1,3-5".
// An empty answer or "all" selects everything.
//
// Returns:
//   - ErrNoResources if the list is empty
//   - ErrInvalidSelection if a number is malformed or out of range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (s *Selector) Pick(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, ErrNoResources
	}

	fmt.Fprintln(s.writer, "Resources:")
	for i, it := range items {
		fmt.Fprintf(s.writer, "  [%d] %s\n", i+1, it)
	}
	fmt.Fprint(s.writer, "Select (e.g. 1,3-4) [all]: ")

	input, err := s.readLine()
	if err != nil {
		return nil, err
	}
	if input == "" || strings.EqualFold(input, "all") {
		return slices.Clone(items), nil
	}

	idx, err := parseIndexes(input, len(items))
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(idx))
	for _, i := range idx {
		out = append(out, items[i])
	}
	return out, nil
}

// Confirm asks a yes/no question. An empty answer returns def.
func (s *Selector) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(s.writer, "%s [%s]: ", question, hint)

	input, err := s.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(input) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, errors.Wrapf(ErrInvalidSelection, "%q is not yes or no", input)
}

func (s *Selector) readLine() (string, error) {
	input, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && input == "" {
			return "", ErrSelectionCancelled
		}
		if !errors.Is(err, io.EOF) {
			return "", errors.Wrap(err, "reading selection")
		}
	}
	return strings.TrimSpace(input), nil
}

// parseIndexes parses comma-separated 1-based numbers and ranges into
// sorted, de-duplicated 0-based indexes.
func parseIndexes(input string, n int) ([]int, error) {
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidSelection, "%q is not a number", part)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, errors.Wrapf(ErrInvalidSelection, "%q is not a range", part)
			}
		}
		if first < 1 || last > n || first > last {
			return nil, errors.Wrapf(ErrInvalidSelection, "%s is out of range [1-%d]", part, n)
		}
		for i := first; i <= last; i++ {
			seen[i-1] = true
		}
	}
	if len(seen) == 0 {
		return nil, errors.Wrap(ErrInvalidSelection, "nothing selected")
	}

	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	slices.Sort(out)
	return out, nil
}
