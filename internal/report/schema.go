package report

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema (draft 2020-12) describing the JSON form
// of a Report.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := reflector.Reflect(&document{})
	s.Title = "bridle copy report"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling schema")
	}
	return append(data, '\n'), nil
}
