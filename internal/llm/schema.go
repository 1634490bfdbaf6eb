package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Stop reasons reported in Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

var compiled sync.Map // *Schema -> *jsonschema.Schema

// Validate checks raw against the schema definition. Compiled schemas are
// cached per *Schema, so callers should keep their schemas in package vars.
func (s *Schema) Validate(raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &Error{Kind: ErrInvalidOutput, Content: raw, Err: fmt.Errorf("not JSON: %w", err)}
	}
	sch, err := s.compile()
	if err != nil {
		return fmt.Errorf("schema %q: %w", s.Name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return &Error{Kind: ErrInvalidOutput, Content: raw, Err: err}
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(s); ok {
		return v.(*jsonschema.Schema), nil
	}
	// Round-trip through JSON so Go-typed literals ([]string, int) become
	// the generic values the compiler expects.
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, err
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	url := "mem://" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	compiled.Store(s, sch)
	return sch, nil
}

// checkOutput applies the structured-output contract shared by every
// provider: a schema'd answer must be complete and must validate.
func checkOutput(req Request, resp *Response) error {
	if req.Schema == nil {
		return nil
	}
	if resp.StopReason == StopMaxTokens {
		return &Error{Kind: ErrTruncated, Content: resp.Content}
	}
	return req.Schema.Validate(resp.Content)
}
