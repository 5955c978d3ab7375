package extract

import "errors"

// ErrNoCGO is returned for ECMAScript files when the binary was built
// without cgo and tree-sitter is unavailable.
var ErrNoCGO = errors.New("ECMAScript extraction requires CGO (tree-sitter)")

// nodeKind is the fixed set of tree-sitter node types the ECMAScript
// visitor reacts to. Type strings are mapped once per node.
type nodeKind uint8

const (
	kindOther nodeKind = iota
	kindImportStatement
	kindExportStatement
	kindCallExpression
	kindAssignment
	kindFunction
	kindArrowFunction
	kindMethod
	kindIf
	kindFor
	kindForIn
	kindWhile
	kindDo
	kindSwitch
	kindSwitchCase
	kindTry
	kindCatch
	kindTernary
	kindBinary
)

var nodeKinds = map[string]nodeKind{
	"import_statement":               kindImportStatement,
	"export_statement":               kindExportStatement,
	"call_expression":                kindCallExpression,
	"assignment_expression":          kindAssignment,
	"function_declaration":           kindFunction,
	"function_expression":            kindFunction,
	"function":                       kindFunction,
	"generator_function":             kindFunction,
	"generator_function_declaration": kindFunction,
	"arrow_function":                 kindArrowFunction,
	"method_definition":              kindMethod,
	"if_statement":                   kindIf,
	"for_statement":                  kindFor,
	"for_in_statement":               kindForIn,
	"while_statement":                kindWhile,
	"do_statement":                   kindDo,
	"switch_statement":               kindSwitch,
	"switch_case":                    kindSwitchCase,
	"try_statement":                  kindTry,
	"catch_clause":                   kindCatch,
	"ternary_expression":             kindTernary,
	"binary_expression":              kindBinary,
}

func kindFromType(t string) nodeKind {
	return nodeKinds[t]
}

func (k nodeKind) isFunction() bool {
	return k == kindFunction || k == kindArrowFunction || k == kindMethod
}

// isDecision reports unconditional decision points. Binary expressions
// count only for logical operators and are checked separately.
func (k nodeKind) isDecision() bool {
	switch k {
	case kindIf, kindFor, kindForIn, kindWhile, kindDo, kindSwitchCase, kindCatch, kindTernary:
		return true
	}
	return false
}

// nests reports block constructs that deepen nesting.
func (k nodeKind) nests() bool {
	switch k {
	case kindIf, kindFor, kindForIn, kindWhile, kindDo, kindSwitch, kindTry, kindCatch:
		return true
	}
	return false
}

func isLogicalOperator(op string) bool {
	return op == "&&" || op == "||" || op == "??"
}
