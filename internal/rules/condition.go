// ==============================================================================
// RULE CONDITION PARSER - internal/rules/condition.go
// ==============================================================================
// Parses the narrow comparison grammar used by authored scoring rules:
//
//	<identifier> (==|!=|<|>) <literal>
//
// Literals are true/false, an integer, or a quoted or bare string. There is no
// boolean composition; signals combine by stacking rules whose points sum.
// Conditions are parsed once when a configuration is loaded, not per
// evaluation.
// ==============================================================================

package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator is a comparison operator supported by the grammar.
type Operator string

const (
	OpEqual       Operator = "=="
	OpNotEqual    Operator = "!="
	OpLessThan    Operator = "<"
	OpGreaterThan Operator = ">"
)

// LiteralKind tags the parsed literal type.
type LiteralKind int

const (
	LiteralBool LiteralKind = iota
	LiteralInt
	LiteralString
)

// Comparison is the typed representation of a single rule condition.
type Comparison struct {
	Field string
	Op    Operator
	Kind  LiteralKind

	BoolValue   bool
	IntValue    int
	StringValue string
}

// ParseCondition parses a condition expression into its typed form. Returned
// errors describe exactly which part of the grammar was violated so malformed
// rules are diagnosable at configuration load time.
func ParseCondition(expr string) (Comparison, error) {
	var cmp Comparison

	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return cmp, fmt.Errorf("empty condition")
	}

	// Two-character operators first so "==" is not read as "=".
	var opIndex int
	var op Operator
	for i := 0; i < len(trimmed); i++ {
		if strings.HasPrefix(trimmed[i:], "==") {
			op, opIndex = OpEqual, i
		} else if strings.HasPrefix(trimmed[i:], "!=") {
			op, opIndex = OpNotEqual, i
		} else if trimmed[i] == '<' {
			op, opIndex = OpLessThan, i
		} else if trimmed[i] == '>' {
			op, opIndex = OpGreaterThan, i
		} else {
			continue
		}
		break
	}
	if op == "" {
		return cmp, fmt.Errorf("no supported operator in condition %q", expr)
	}

	field := strings.TrimSpace(trimmed[:opIndex])
	if field == "" {
		return cmp, fmt.Errorf("missing field name in condition %q", expr)
	}
	for _, r := range field {
		if !isIdentRune(r) {
			return cmp, fmt.Errorf("invalid field name %q", field)
		}
	}

	rhs := strings.TrimSpace(trimmed[opIndex+len(op):])
	if rhs == "" {
		return cmp, fmt.Errorf("missing literal in condition %q", expr)
	}

	cmp.Field = field
	cmp.Op = op

	switch {
	case rhs == "true" || rhs == "false":
		cmp.Kind = LiteralBool
		cmp.BoolValue = rhs == "true"
	case isInteger(rhs):
		cmp.Kind = LiteralInt
		n, err := strconv.Atoi(rhs)
		if err != nil {
			return cmp, fmt.Errorf("unparsable integer literal %q", rhs)
		}
		cmp.IntValue = n
	default:
		cmp.Kind = LiteralString
		cmp.StringValue = unquote(rhs)
	}

	if cmp.Kind != LiteralInt && (cmp.Op == OpLessThan || cmp.Op == OpGreaterThan) {
		return cmp, fmt.Errorf("operator %q requires an integer literal", cmp.Op)
	}

	return cmp, nil
}

// Eval applies the comparison against an input-factor record. A missing field
// or a type mismatch is an evaluation error; the rule then contributes zero
// points and the error lands in its trace entry.
func (c Comparison) Eval(fields map[string]interface{}) (bool, error) {
	value, ok := fields[c.Field]
	if !ok {
		return false, fmt.Errorf("unknown field %q", c.Field)
	}

	switch c.Kind {
	case LiteralBool:
		b, ok := value.(bool)
		if !ok {
			return false, fmt.Errorf("field %q is not a boolean", c.Field)
		}
		if c.Op == OpEqual {
			return b == c.BoolValue, nil
		}
		if c.Op == OpNotEqual {
			return b != c.BoolValue, nil
		}
		return false, fmt.Errorf("operator %q not supported for booleans", c.Op)

	case LiteralInt:
		n, ok := value.(int)
		if !ok {
			return false, fmt.Errorf("field %q is not an integer", c.Field)
		}
		switch c.Op {
		case OpEqual:
			return n == c.IntValue, nil
		case OpNotEqual:
			return n != c.IntValue, nil
		case OpLessThan:
			return n < c.IntValue, nil
		case OpGreaterThan:
			return n > c.IntValue, nil
		}

	case LiteralString:
		s, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("field %q is not a string", c.Field)
		}
		if c.Op == OpEqual {
			return s == c.StringValue, nil
		}
		if c.Op == OpNotEqual {
			return s != c.StringValue, nil
		}
		return false, fmt.Errorf("operator %q not supported for strings", c.Op)
	}

	return false, fmt.Errorf("unsupported comparison")
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		if len(s) == 1 {
			return false
		}
		start = 1
	}
	for i := start; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
