package contract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Field declares one named output of a contract with the natural-language
// description used to instruct the model.
type Field struct {
	Name        string
	Description string
}

// Contract is the declarative input/output shape for one extraction task.
// Contracts hold no logic; the output field-name set is fixed at definition
// time so normalization can assume presence by name and treat absence as a
// soft failure.
type Contract struct {
	Name    string
	Task    string
	Outputs []Field

	schema *jsonschema.Schema
}

// ClassifyArticle classifies which SFDR article (6, 8, or 9) a fund follows.
var ClassifyArticle = mustContract(Contract{
	Name: "classify_article",
	Task: "Classify which SFDR article (6, 8, or 9) the fund follows based on the provided fund documentation.",
	Outputs: []Field{
		{Name: "article", Description: "SFDR article: '6', '8', or '9'"},
		{Name: "confidence", Description: "Confidence score 0.0-1.0"},
		{Name: "reasoning", Description: "Brief explanation of the classification"},
	},
})

// ExtractDefinition extracts the sustainable investment definition.
var ExtractDefinition = mustContract(Contract{
	Name: "extract_definition",
	Task: "Extract the sustainable investment definition from the provided fund document sections.",
	Outputs: []Field{
		{Name: "definition_present", Description: "true if a definition is found, false otherwise"},
		{Name: "definition_text", Description: "The sustainable investment definition text"},
		{Name: "page_number", Description: "Page number where the definition appears"},
		{Name: "confidence", Description: "Confidence score 0.0-1.0"},
	},
})

// ExtractDNSH extracts Do No Significant Harm information.
var ExtractDNSH = mustContract(Contract{
	Name: "extract_dnsh",
	Task: "Extract Do No Significant Harm (DNSH) information from the provided fund document sections.",
	Outputs: []Field{
		{Name: "dnsh_present", Description: "true if DNSH is mentioned, false otherwise"},
		{Name: "coverage", Description: "Coverage level: none, partial, or full"},
		{Name: "page_number", Description: "Page number where DNSH appears"},
		{Name: "confidence", Description: "Confidence score 0.0-1.0"},
	},
})

// ExtractPAI extracts Principal Adverse Impact information.
var ExtractPAI = mustContract(Contract{
	Name: "extract_pai",
	Task: "Extract Principal Adverse Impact (PAI) information from the provided fund document sections.",
	Outputs: []Field{
		{Name: "mandatory_coverage_ratio", Description: "Ratio of mandatory PAIs covered (0.0-1.0), or None if not stated"},
		{Name: "page_number", Description: "Page number where PAI information appears"},
		{Name: "confidence", Description: "Confidence score 0.0-1.0"},
	},
})

func mustContract(c Contract) *Contract {
	schema, err := compileSchema(&c)
	if err != nil {
		panic(fmt.Sprintf("contract %s: %v", c.Name, err))
	}
	c.schema = schema
	return &c
}

// compileSchema builds a permissive JSON Schema for the contract's outputs.
// Fields are not required and scalar types are accepted loosely: a missing
// or oddly typed field is a normalization concern, not a validation crash.
// The schema still rejects structurally broken responses (non-objects,
// nested containers where scalars belong).
func compileSchema(c *Contract) (*jsonschema.Schema, error) {
	props := map[string]any{}
	for _, f := range c.Outputs {
		props[f.Name] = map[string]any{
			"type":        []string{"string", "number", "boolean", "null"},
			"description": f.Description,
		}
	}
	doc := map[string]any{
		"type":       "object",
		"properties": props,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	schema, err := jsonschema.CompileString(c.Name+".schema.json", string(raw))
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return schema, nil
}

// BuildPrompt renders the contract and retrieval context into the prompt
// submitted to the model.
func (c *Contract) BuildPrompt(context string) string {
	var sb strings.Builder
	sb.WriteString("You are a regulatory disclosure extraction assistant for SFDR fund documents.\n\n")
	sb.WriteString("Task: ")
	sb.WriteString(c.Task)
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(context)
	sb.WriteString("\n\nReturn ONLY a valid JSON object with no markdown formatting, no code fences, no explanation. The object must contain these keys:\n")
	for _, f := range c.Outputs {
		fmt.Fprintf(&sb, "- %q: %s\n", f.Name, f.Description)
	}
	return sb.String()
}

// ValidateResponse checks a decoded model response against the contract's
// output schema and wraps it in a typed Response. Validation failure is
// reported as an error so callers can apply their catch-and-default policy.
func (c *Contract) ValidateResponse(raw map[string]any) (*Response, error) {
	// jsonschema validates the generic decoded form.
	if err := c.schema.Validate(map[string]any(raw)); err != nil {
		return nil, fmt.Errorf("response for %s failed schema validation: %w", c.Name, err)
	}
	return &Response{fields: raw}, nil
}
