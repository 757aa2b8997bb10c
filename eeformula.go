package eeformula

import (
	"errors"
)

// Messages for the two outcomes that are not evaluation results.
const (
	PromptMessage   = "Please enter a formula name."
	NotFoundMessage = "Formula not found. Try again."
)

// Labels shared by the form front ends.
const (
	Title     = "Electrical Engineering Formula Generator"
	NameLabel = "Enter Formula Name (e.g., Ohm's Law, Power)"
)

// Field is one of the named numeric inputs the form front ends offer.
type Field struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Label  string `json:"label" yaml:"label"`
	Unit   string `json:"unit" yaml:"unit"`
}

// FormFields are the inputs of the form front ends, in display order.
// Other variables (X_L, X_C, P, E, Z) can still be bound through the
// JSON, YAML and CLI surfaces.
var FormFields = []Field{
	{Symbol: "V", Label: "Voltage", Unit: "V"},
	{Symbol: "I", Label: "Current", Unit: "A"},
	{Symbol: "R", Label: "Resistance", Unit: "Ω"},
	{Symbol: "C", Label: "Capacitance", Unit: "F"},
	{Symbol: "L", Label: "Inductance", Unit: "H"},
	{Symbol: "f", Label: "Frequency", Unit: "Hz"},
}

// HandleResult resolves name and evaluates the matched entry. Errors are
// ErrEmptyQuery, ErrNotFound or a *SolveError.
func HandleResult(name string, values Bindings) (Result, error) {
	entry, err := Resolve(name)
	if err != nil {
		return Result{}, err
	}
	return Evaluate(entry, values)
}

// Handle is the one user-facing operation: it returns the prompt, the
// not-found message, the result line or the error line.
func Handle(name string, values Bindings) string {
	res, err := HandleResult(name, values)
	if err != nil {
		return Message(err)
	}
	return res.Text
}

// Message renders an error from HandleResult the way Handle shows it.
func Message(err error) string {
	var se *SolveError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return PromptMessage
	case errors.Is(err, ErrNotFound):
		return NotFoundMessage
	case errors.As(err, &se):
		return se.Error()
	}
	return (&SolveError{Err: err}).Error()
}
