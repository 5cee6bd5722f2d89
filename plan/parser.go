package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================================
// PLAN PARSER — extracts and normalizes the Planner's JSON document
// ============================================================================
// The Planner wraps JSON in markdown fences, omits fields, and mixes
// encodings. Parsing strips the wrapping, unmarshals, then applies
// deterministic fixes for the common inconsistencies. Anything the parser
// cannot fix stays as-is for the executor's per-operation error handling.
// ============================================================================

// Parse extracts a Plan from raw Planner output.
func Parse(raw string) (*Plan, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var p Plan
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w (payload: %.200s)", err, payload)
	}
	Normalize(&p)
	return &p, nil
}

// extractJSON strips markdown code fences and trims to the outermost JSON
// object.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in planner output (got %.100q)", raw)
	}
	return s[start : end+1], nil
}

// Normalize applies deterministic rules that fix common Planner
// inconsistencies without changing intent.
func Normalize(p *Plan) {
	// Operation types arrive in mixed case with stray spaces.
	for i := range p.Operations {
		p.Operations[i].Type = strings.ToLower(strings.TrimSpace(p.Operations[i].Type))
	}

	// A singular chart config is the one-element case of the plural list.
	if p.ChartConfig != nil && len(p.ChartConfigs) == 0 {
		p.ChartConfigs = []ChartConfig{*p.ChartConfig}
	}
	for i := range p.ChartConfigs {
		if p.ChartConfigs[i].ChartType == "" {
			p.ChartConfigs[i].ChartType = "bar"
		}
		p.ChartConfigs[i].ChartType = strings.ToLower(p.ChartConfigs[i].ChartType)
	}

	// Sort order spellings: "ascending"/"descending"/"" → asc/desc.
	if p.Sort != nil {
		for i := range p.Sort.Columns {
			c := &p.Sort.Columns[i]
			switch strings.ToLower(strings.TrimSpace(c.Order)) {
			case "desc", "descending", "reverse":
				c.Order = "desc"
			default:
				c.Order = "asc"
			}
			c.DataType = strings.ToLower(strings.TrimSpace(c.DataType))
			if c.DataType == "" {
				c.DataType = "text"
			}
		}
	}

	// Formula type tags are matched lowercase.
	if p.Formula != nil {
		p.Formula.Type = strings.ToLower(strings.TrimSpace(p.Formula.Type))
	}

	if p.ConditionalFormat != nil {
		p.ConditionalFormat.FormatType = strings.ToLower(strings.TrimSpace(p.ConditionalFormat.FormatType))
	}
}
