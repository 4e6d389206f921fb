package netlist

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaSource string

// ValidateSchema checks a raw netlist document against the embedded
// structural schema, independent of which producer (or producer version)
// emitted it. Violations come back as a single *ParseError whose message
// carries CUE's positioned diagnostics.
//
// This is shape validation only; Parse performs the semantic checks
// (unresolved bits, driver conflicts) on top of it.
func ValidateSchema(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("netlist_schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("internal schema is invalid: %w", err)
	}

	expr, err := cuejson.Extract("netlist.json", data)
	if err != nil {
		return &ParseError{Offset: -1, Message: fmt.Sprintf("not valid JSON: %v", err)}
	}
	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return &ParseError{Offset: -1, Message: err.Error()}
	}

	if err := schema.Unify(doc).Validate(cue.Concrete(false)); err != nil {
		return &ParseError{Offset: -1, Message: cueerrors.Details(err, nil)}
	}
	return nil
}
