package eeformula

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/njchilds90/eeformula/symbol"
)

// ============================================================
// Tool Interface
// ============================================================

// ToolRequest is a JSON tool call: {"tool": "solve", "params": {...}}.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse carries the structured result, its LaTeX and plain text
// renderings, or an error.
type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches one tool call. It never panics on bad input.
func HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getValues := func(key string) (Bindings, error) {
		v, ok := req.Params[key]
		if !ok || v == nil {
			return Bindings{}, nil
		}
		raw, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be an object", key)
		}
		b, err := BindingsFromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", key, err)
		}
		return b, nil
	}
	getEntry := func() (Entry, error) {
		name, err := getString("name")
		if err != nil {
			return Entry{}, err
		}
		return Resolve(name)
	}
	fail := func(err error) ToolResponse {
		return ToolResponse{Error: Message(err)}
	}

	switch req.Tool {
	case "list":
		entries := All()
		names := Names()
		return ToolResponse{Result: entries, String: fmt.Sprintf("%d formulas: %v", len(names), names)}

	case "resolve":
		e, err := getEntry()
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				q, _ := getString("name")
				return ToolResponse{Error: Message(err), Result: map[string]interface{}{"suggestions": Suggest(q, 3)}}
			}
			return fail(err)
		}
		return ToolResponse{Result: e, String: e.Name + ": " + e.Equation}

	case "solve":
		name, err := getString("name")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		values, err := getValues("values")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		res, err := HandleResult(name, values)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: res, String: res.Text}

	case "variables":
		e, err := getEntry()
		if err != nil {
			return fail(err)
		}
		target, rhs, err := e.Parse()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		vars := symbol.Symbols(rhs)
		return ToolResponse{
			Result: map[string]interface{}{"target": target, "variables": vars},
			String: fmt.Sprintf("%s from %v", target, vars),
		}

	case "latex":
		e, err := getEntry()
		if err != nil {
			return fail(err)
		}
		eq, err := symbol.ParseEquation(e.Equation)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: symbol.JSONValue(eq.RHS), LaTeX: eq.LaTeX(), String: eq.String()}

	case "schema":
		return ToolResponse{Result: ToolSpec(), String: "tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// BindingsFromJSON converts decoded JSON values to Bindings. Numbers and
// strings are accepted; null means unknown.
func BindingsFromJSON(raw map[string]interface{}) (Bindings, error) {
	b := make(Bindings, len(raw))
	for name, val := range raw {
		switch x := val.(type) {
		case nil:
			b[name] = ""
		case string:
			b[name] = x
		case float64:
			b[name] = strconv.FormatFloat(x, 'g', -1, 64)
		case json.Number:
			b[name] = x.String()
		default:
			return nil, fmt.Errorf("%s must be a number or string", name)
		}
	}
	return b, nil
}

// ToolSpec returns the JSON schema of every tool HandleToolCall accepts.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("list", "List the formula catalog in order", []string{}, map[string]string{}),
		ts("resolve", "Find the first formula whose name contains the query (case-insensitive)", []string{"name"}, map[string]string{"name": "string"}),
		ts("solve", "Evaluate a formula for known values; values maps variable names to numbers", []string{"name"}, map[string]string{"name": "string", "values": "object"}),
		ts("variables", "List the target and the right-hand variables of a formula", []string{"name"}, map[string]string{"name": "string"}),
		ts("latex", "Render a formula as LaTeX", []string{"name"}, map[string]string{"name": "string"}),
		ts("schema", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
