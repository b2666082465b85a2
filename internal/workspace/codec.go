package workspace

import (
	"encoding/json"
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"tradescape/internal/model"
)

// DownloadFilename is the fixed name used for workspace exports.
const DownloadFilename = "saved_work.json"

// ParseError reports a workspace payload that could not be decoded or
// failed structural validation. The importing store must stay untouched.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse workspace: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

var validate = validator.New()

// Default returns a workspace with every field at its documented default.
func Default() model.Workspace {
	var w model.Workspace
	if err := defaults.Set(&w); err != nil {
		// Only reachable with malformed default tags, which is a programming error.
		panic(err)
	}
	w.GraphState = model.GraphViewState{}
	w.Shapes = []model.Shape{}
	return w
}

// Decode parses a workspace payload. Missing fields fall back to defaults;
// a payload that is not valid JSON or violates the field constraints fails
// with ParseError.
func Decode(data []byte) (model.Workspace, error) {
	w := Default()
	if err := json.Unmarshal(data, &w); err != nil {
		return model.Workspace{}, &ParseError{Err: err}
	}
	if err := validate.Struct(&w); err != nil {
		return model.Workspace{}, &ParseError{Err: err}
	}
	if w.GraphState == nil {
		w.GraphState = model.GraphViewState{}
	}
	if w.Shapes == nil {
		w.Shapes = []model.Shape{}
	}
	return w, nil
}

// ValidateSettings checks a settings struct against the same field
// constraints Decode enforces for whole workspaces.
func ValidateSettings(s *model.Settings) error {
	if err := validate.Struct(s); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

// Encode serializes a workspace in the external file format.
func Encode(w model.Workspace) ([]byte, error) {
	return json.MarshalIndent(w, "", "  ")
}
