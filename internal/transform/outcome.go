package transform

// Status classifies what happened to a resource.
type Status string

const (
	Copied      Status = "copied"
	Transformed Status = "transformed"
	Skipped     Status = "skipped"
	Warned      Status = "warned"
)

// NoteUnsupported is the note attached to resources whose kind the target
// harness cannot hold.
const NoteUnsupported = "unsupported by target harness"

// Outcome is the per-resource result of a copy.
type Outcome struct {
	Status       Status `json:"status" jsonschema:"enum=copied,enum=transformed,enum=skipped,enum=warned"`
	OriginalName string `json:"original_name"`
	NewName      string `json:"new_name,omitempty"`
	Note         string `json:"note,omitempty"`
}

// Renamed reports whether the resource got a different name in the target.
func (o Outcome) Renamed() bool {
	return o.NewName != "" && o.NewName != o.OriginalName
}

// Unsupported returns the Skipped outcome for a resource whose kind the
// target harness cannot hold.
func Unsupported(name string) Outcome {
	return Outcome{Status: Skipped, OriginalName: name, Note: NoteUnsupported}
}
