//go:build cgo

package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"depscope/internal/complexity"
	"depscope/internal/lang"
)

// ECMAScript extracts TypeScript and JavaScript files with tree-sitter.
// Syntax errors never fail extraction: tree-sitter recovers with ERROR
// nodes and whatever was recognized is reported.
type ECMAScript struct{}

// NewECMAScript creates the ECMAScript extractor.
func NewECMAScript() *ECMAScript {
	return &ECMAScript{}
}

// Available reports whether ECMAScript extraction is compiled in.
func Available() bool {
	return true
}

// grammarFor picks the tree-sitter grammar by extension.
func grammarFor(rel string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// ExtractSource parses src and walks the tree once.
func (e *ECMAScript) ExtractSource(ctx context.Context, rel string, src []byte) (*FileResult, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammarFor(rel))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	v := &ecmaVisitor{src: src, c: newCollector()}
	v.visit(tree.RootNode())

	l, ok := lang.FromPath(rel)
	if !ok {
		l = lang.JavaScript
	}
	fc := complexity.FileComplexity{
		Path:        rel,
		Language:    string(l),
		Functions:   v.functionList(),
		LinesOfCode: complexity.CountLOC(src, complexity.CStyle),
	}
	fc.Aggregate()

	return &FileResult{
		Module: ModuleInfo{
			Path:     rel,
			Language: l,
			Imports:  v.c.importList(),
			Exports:  v.c.sortedExports(),
			Size:     int64(len(src)),
			Lines:    countLines(src),
		},
		Complexity: fc,
	}, nil
}

type funcFrame struct {
	idx   int
	depth int
}

type ecmaVisitor struct {
	src       []byte
	c         *collector
	functions []complexity.FunctionComplexity
	frames    []*funcFrame
}

func kindOf(n *sitter.Node) nodeKind {
	if !n.IsNamed() {
		return kindOther
	}
	return kindFromType(n.Type())
}

// walkItem is one entry of the explicit traversal stack. Post items undo
// what the matching pre visit opened.
type walkItem struct {
	node     *sitter.Node
	post     bool
	function bool
	nested   *funcFrame
}

// visit walks the tree depth first with an explicit stack so deeply nested
// sources cannot exhaust the goroutine stack.
func (v *ecmaVisitor) visit(root *sitter.Node) {
	if root == nil {
		return
	}
	stack := []walkItem{{node: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.post {
			if it.nested != nil {
				it.nested.depth--
			}
			if it.function {
				v.exitFunction()
			}
			continue
		}

		n := it.node
		k := kindOf(n)
		switch k {
		case kindImportStatement:
			v.importStatement(n)
		case kindExportStatement:
			v.exportStatement(n)
		case kindCallExpression:
			v.callExpression(n)
		case kindAssignment:
			v.assignment(n)
		}

		post := walkItem{post: true}
		if k.isFunction() {
			v.enterFunction(n)
			post.function = true
		}
		if fr := v.top(); fr != nil {
			fn := &v.functions[fr.idx]
			if k.isDecision() || (k == kindBinary && v.isLogical(n)) {
				fn.Cyclomatic++
			}
			if k.nests() {
				fr.depth++
				if fr.depth > fn.MaxNesting {
					fn.MaxNesting = fr.depth
				}
				post.nested = fr
			}
		}
		stack = append(stack, post)

		// Children go on in reverse so they pop in source order.
		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			if c := n.NamedChild(i); c != nil {
				stack = append(stack, walkItem{node: c})
			}
		}
	}
}

func (v *ecmaVisitor) top() *funcFrame {
	if len(v.frames) == 0 {
		return nil
	}
	return v.frames[len(v.frames)-1]
}

func (v *ecmaVisitor) functionList() []complexity.FunctionComplexity {
	if v.functions == nil {
		return []complexity.FunctionComplexity{}
	}
	return v.functions
}

// enterFunction opens a new measurement frame. Nested functions get their
// own frame and do not add to the enclosing function.
func (v *ecmaVisitor) enterFunction(n *sitter.Node) {
	v.functions = append(v.functions, complexity.FunctionComplexity{
		Name:       v.functionName(n),
		StartLine:  int(n.StartPoint().Row) + 1,
		EndLine:    int(n.EndPoint().Row) + 1,
		Cyclomatic: 1,
		Params:     v.paramCount(n),
	})
	v.frames = append(v.frames, &funcFrame{idx: len(v.functions) - 1})
}

func (v *ecmaVisitor) exitFunction() {
	v.frames = v.frames[:len(v.frames)-1]
}

func (v *ecmaVisitor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(v.src)
}

func (v *ecmaVisitor) functionName(n *sitter.Node) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return v.text(name)
	}
	parent := n.Parent()
	if parent == nil {
		return "<anonymous>"
	}
	switch parent.Type() {
	case "variable_declarator":
		if name := parent.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
			return v.text(name)
		}
	case "pair":
		return unquote(v.text(parent.ChildByFieldName("key")))
	case "assignment_expression":
		return v.text(parent.ChildByFieldName("left"))
	case "field_definition", "public_field_definition":
		if name := parent.ChildByFieldName("property"); name != nil {
			return v.text(name)
		}
		if name := parent.ChildByFieldName("name"); name != nil {
			return v.text(name)
		}
	}
	return "<anonymous>"
}

func (v *ecmaVisitor) paramCount(n *sitter.Node) int {
	if params := n.ChildByFieldName("parameters"); params != nil {
		count := 0
		for i := 0; i < int(params.NamedChildCount()); i++ {
			if params.NamedChild(i).Type() != "comment" {
				count++
			}
		}
		return count
	}
	if n.ChildByFieldName("parameter") != nil {
		return 1
	}
	return 0
}

func (v *ecmaVisitor) isLogical(n *sitter.Node) bool {
	op := n.ChildByFieldName("operator")
	return op != nil && isLogicalOperator(op.Type())
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// importStatement handles `import ... from "x"`, side-effect imports and
// TypeScript's `import x = require("x")`.
func (v *ecmaVisitor) importStatement(n *sitter.Node) {
	source := n.ChildByFieldName("source")
	if source == nil {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() != "import_require_clause" {
				continue
			}
			if spec, ok := v.stringChild(child); ok {
				v.c.addImport(spec, KindRequire, 1, line(n))
			}
		}
		return
	}

	spec, ok := v.literal(source)
	if !ok {
		return
	}
	names := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			binding := clause.NamedChild(j)
			switch binding.Type() {
			case "identifier", "namespace_import":
				names++
			case "named_imports":
				names += countNamed(binding, "import_specifier")
			}
		}
	}
	v.c.addImport(spec, KindImport, names, line(n))
}

// exportStatement records exported names and `export ... from` re-exports.
func (v *ecmaVisitor) exportStatement(n *sitter.Node) {
	if source := n.ChildByFieldName("source"); source != nil {
		spec, ok := v.literal(source)
		if !ok {
			return
		}
		names := 0
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "export_clause":
				names += v.exportClause(child)
			case "namespace_export":
				names++
				for j := 0; j < int(child.NamedChildCount()); j++ {
					v.c.addExport(unquote(v.text(child.NamedChild(j))))
				}
			}
		}
		v.c.addImport(spec, KindReExport, names, line(n))
		return
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() && (child.Type() == "default" || child.Type() == "=") {
			v.c.addExport("default")
			return
		}
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		v.declarationNames(decl)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "export_clause" {
			v.exportClause(child)
		}
	}
}

// exportClause adds `{ a, b as c }` names and returns how many there were.
func (v *ecmaVisitor) exportClause(clause *sitter.Node) int {
	count := 0
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		spec := clause.NamedChild(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		count++
		name := spec.ChildByFieldName("alias")
		if name == nil {
			name = spec.ChildByFieldName("name")
		}
		v.c.addExport(unquote(v.text(name)))
	}
	return count
}

func (v *ecmaVisitor) declarationNames(decl *sitter.Node) {
	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			d := decl.NamedChild(i)
			if d.Type() == "variable_declarator" {
				v.patternNames(d.ChildByFieldName("name"))
			}
		}
	case "ambient_declaration":
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			v.declarationNames(decl.NamedChild(i))
		}
	default:
		if name := decl.ChildByFieldName("name"); name != nil {
			v.c.addExport(unquote(v.text(name)))
		}
	}
}

// patternNames adds every identifier bound by a declarator name, including
// destructuring patterns.
func (v *ecmaVisitor) patternNames(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		v.c.addExport(v.text(n))
		return
	case "pair_pattern":
		v.patternNames(n.ChildByFieldName("value"))
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		v.patternNames(n.NamedChild(i))
	}
}

// callExpression handles require("x") and import("x").
func (v *ecmaVisitor) callExpression(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if fn == nil || args == nil {
		return
	}

	var kind ImportKind
	switch {
	case fn.Type() == "import":
		kind = KindDynamicImport
	case fn.Type() == "identifier" && v.text(fn) == "require":
		kind = KindRequire
	default:
		return
	}

	spec, ok := v.stringChild(args)
	if !ok {
		return
	}
	names := 1
	if kind == KindRequire {
		if parent := n.Parent(); parent != nil && parent.Type() == "variable_declarator" {
			if pattern := parent.ChildByFieldName("name"); pattern != nil && pattern.Type() == "object_pattern" {
				names = int(pattern.NamedChildCount())
			}
		}
	}
	v.c.addImport(spec, kind, names, line(n))
}

// assignment handles CommonJS `module.exports = ...`,
// `module.exports.x = ...` and `exports.x = ...`.
func (v *ecmaVisitor) assignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	if left == nil || left.Type() != "member_expression" {
		return
	}
	target := v.text(left)
	switch {
	case target == "module.exports":
		v.c.addExport("default")
		right := n.ChildByFieldName("right")
		if right == nil || right.Type() != "object" {
			return
		}
		for i := 0; i < int(right.NamedChildCount()); i++ {
			prop := right.NamedChild(i)
			switch prop.Type() {
			case "pair":
				v.c.addExport(unquote(v.text(prop.ChildByFieldName("key"))))
			case "shorthand_property_identifier":
				v.c.addExport(v.text(prop))
			case "method_definition":
				v.c.addExport(v.text(prop.ChildByFieldName("name")))
			}
		}
	case strings.HasPrefix(target, "module.exports.") || strings.HasPrefix(target, "exports."):
		if prop := left.ChildByFieldName("property"); prop != nil {
			v.c.addExport(v.text(prop))
		}
	}
}

// stringChild returns the first string-literal named child of n.
func (v *ecmaVisitor) stringChild(n *sitter.Node) (string, bool) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if spec, ok := v.literal(n.NamedChild(i)); ok {
			return spec, true
		}
	}
	return "", false
}

// literal returns the value of a string or substitution-free template
// string node.
func (v *ecmaVisitor) literal(n *sitter.Node) (string, bool) {
	switch n.Type() {
	case "string":
		return unquote(v.text(n)), true
	case "template_string":
		raw := v.text(n)
		if strings.Contains(raw, "${") {
			return "", false
		}
		return unquote(raw), true
	}
	return "", false
}

func countNamed(n *sitter.Node, typ string) int {
	count := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == typ {
			count++
		}
	}
	return count
}
