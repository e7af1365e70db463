package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/settlement.schema.json
var settlementSchema []byte

const schemaURL = "settlement.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(settlementSchema)); err != nil {
			compileErr = fmt.Errorf("adding settlement schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// ValidateDocument checks raw settlement YAML against the settlement
// JSON schema. It catches unknown keys and wrong types that decoding
// into Go structs would silently drop or zero.
func ValidateDocument(data []byte) *Report {
	r := NewReport()

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		r.AddError(Result{Stage: StageDocument, Message: fmt.Sprintf("parsing settlement YAML: %v", err)})
		return r
	}
	if raw == nil {
		r.AddInfo(Result{Stage: StageDocument, Message: "empty document; defaults apply"})
		return r
	}

	// Round-trip through JSON so the validator sees JSON value types.
	buf, err := json.Marshal(raw)
	if err != nil {
		r.AddError(Result{Stage: StageDocument, Message: fmt.Sprintf("settlement is not JSON-compatible: %v", err)})
		return r
	}
	var doc any
	if err := json.Unmarshal(buf, &doc); err != nil {
		r.AddError(Result{Stage: StageDocument, Message: fmt.Sprintf("re-decoding settlement: %v", err)})
		return r
	}

	schema, err := documentSchema()
	if err != nil {
		r.AddError(Result{Stage: StageDocument, Message: err.Error()})
		return r
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			r.AddError(Result{Stage: StageDocument, Message: err.Error()})
			return r
		}
		for _, leaf := range leaves(ve) {
			r.AddError(Result{
				Stage:   StageDocument,
				Message: leaf.Message,
				Path:    pointerPath(leaf.InstanceLocation),
				Want:    leaf.KeywordLocation,
			})
		}
	}
	return r
}

func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

// pointerPath turns a JSON pointer like /city/overrides/0/index into
// city.overrides[0].index.
func pointerPath(ptr string) string {
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if isIndex(p) {
			b.WriteString("[" + p + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
