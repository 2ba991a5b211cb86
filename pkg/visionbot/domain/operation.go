package domain

import (
	"strings"
)

// Operation is one of the operations supported by the vision endpoint.
type Operation string

const (
	OperationCaption = Operation("caption")
	OperationQuery   = Operation("query")
	OperationDetect  = Operation("detect")
	OperationPoint   = Operation("point")
)

// DefaultObject is what detect/point look for when the user doesn't name an object.
const DefaultObject = "subject"

var operationAliases = map[string]Operation{
	"caption":  OperationCaption,
	"c":        OperationCaption,
	"cap":      OperationCaption,
	"describe": OperationCaption,
	"query":    OperationQuery,
	"q":        OperationQuery,
	"ask":      OperationQuery,
	"detect":   OperationDetect,
	"d":        OperationDetect,
	"find":     OperationDetect,
	"point":    OperationPoint,
	"p":        OperationPoint,
}

// Operations lists all operations in the order they're presented to users.
func Operations() []Operation {
	return []Operation{OperationCaption, OperationQuery, OperationDetect, OperationPoint}
}

// ParseOperation resolves an operation name or one of its short aliases (case-insensitive).
func ParseOperation(name string) (Operation, bool) {
	op, ok := operationAliases[strings.ToLower(strings.TrimSpace(name))]
	return op, ok
}

// NeedsAnnotation returns true for operations whose results are drawn over the image.
func (o Operation) NeedsAnnotation() bool {
	return o == OperationDetect || o == OperationPoint
}

// Command is a validated request to run an operation over an image.
type Command struct {
	Operation Operation
	// Parameter the question for "query", the object to look for in "detect" and "point"; unused by "caption".
	Parameter string
}

// NewCommand validates the parameter contract of the operation: "query" requires a question, the rest don't.
func NewCommand(operation Operation, parameter string) (Command, error) {
	parameter = strings.TrimSpace(parameter)
	switch operation {
	case OperationCaption, OperationDetect, OperationPoint:
	case OperationQuery:
		if parameter == "" {
			return Command{}, &ValidationError{Field: "question", Message: "Please provide a question for the image."}
		}
	default:
		return Command{}, &ValidationError{Field: "operation", Message: "Unknown operation \"" + string(operation) + "\"."}
	}
	return Command{Operation: operation, Parameter: parameter}, nil
}

// Object returns the object to look for (detect/point), defaulting to DefaultObject.
func (c Command) Object() string {
	if c.Parameter == "" {
		return DefaultObject
	}
	return c.Parameter
}

// Params returns the operation-specific parameters of the inference request.
func (c Command) Params() map[string]any {
	switch c.Operation {
	case OperationCaption:
		return map[string]any{"length": "normal"}
	case OperationQuery:
		return map[string]any{"question": c.Parameter}
	case OperationDetect, OperationPoint:
		return map[string]any{"object": c.Object()}
	default:
		return map[string]any{}
	}
}
