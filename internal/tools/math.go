package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/localhive/localhive/internal/schema"
)

// MathTool performs basic arithmetic on two operands.
type MathTool struct{}

func NewMathTool() *MathTool { return &MathTool{} }

func (t *MathTool) Name() string        { return string(ToolMath) }
func (t *MathTool) Description() string { return "Perform a mathematical operation on two numbers" }
func (t *MathTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"operation": {
				"type": "string",
				"enum": ["add", "subtract", "multiply", "divide", "power"],
				"description": "The mathematical operation to perform"
			},
			"a": {
				"type": "number",
				"description": "First operand"
			},
			"b": {
				"type": "number",
				"description": "Second operand"
			}
		},
		"required": ["operation", "a", "b"]
	}`)
}

// MathOutcome is the tool's success payload. Result is NaN for division
// by zero; Expression is the human-readable form of the calculation.
type MathOutcome struct {
	Operation  string  `json:"operation"`
	Operand1   float64 `json:"operand1"`
	Operand2   float64 `json:"operand2"`
	Result     float64 `json:"result"`
	Expression string  `json:"expression"`
}

// MarshalJSON writes the result as a string when it is NaN or infinite,
// since JSON numbers cannot represent either.
func (o MathOutcome) MarshalJSON() ([]byte, error) {
	type plain MathOutcome
	wire := struct {
		plain
		Result any `json:"result"`
	}{plain: plain(o), Result: o.Result}
	if math.IsNaN(o.Result) || math.IsInf(o.Result, 0) {
		wire.Result = formatNum(o.Result)
	}
	return json.Marshal(wire)
}

func (t *MathTool) Execute(_ context.Context, params map[string]any) schema.ToolResult {
	operation, _ := params["operation"].(string)
	a, okA := toFloat(params["a"])
	b, okB := toFloat(params["b"])
	if !okA || !okB {
		return schema.Fail("operands a and b must be numbers")
	}

	var result float64
	switch operation {
	case "add":
		result = a + b
	case "subtract":
		result = a - b
	case "multiply":
		result = a * b
	case "divide":
		if b == 0 {
			result = math.NaN()
		} else {
			result = a / b
		}
	case "power":
		result = math.Pow(a, b)
	default:
		return schema.Fail(fmt.Sprintf("invalid operation: %s", operation))
	}

	return schema.OK(MathOutcome{
		Operation:  operation,
		Operand1:   a,
		Operand2:   b,
		Result:     result,
		Expression: fmt.Sprintf("%s %s %s = %s",
			formatNum(a), operationSymbol(operation), formatNum(b), formatNum(result)),
	})
}

func operationSymbol(operation string) string {
	switch operation {
	case "add":
		return "+"
	case "subtract":
		return "-"
	case "multiply":
		return "*"
	case "divide":
		return "/"
	case "power":
		return "^"
	}
	return operation
}

func formatNum(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
