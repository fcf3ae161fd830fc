package ast

import (
	"fmt"
	"strings"
)

// Sprint renders an AST subtree as an indented textual tree, one node per
// line.  The output is stable: it depends only on the tree's shape.
func Sprint(node ASTNode) string {
	p := printer{}
	p.node(node)
	return p.sb.String()
}

// SprintTyped renders an AST subtree like Sprint, with the inferred type of
// every expression appended to its line and saturated applications printed as
// `call` nodes.
func SprintTyped(node ASTNode) string {
	p := printer{typed: true}
	p.node(node)
	return p.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
	typed  bool
}

// line opens a new output line for a node, appending the node's inferred
// type in typed mode.
func (p *printer) line(node ASTNode, format string, args ...interface{}) {
	p.sb.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.sb, format, args...)

	if expr, ok := node.(Expr); ok && p.typed && expr.Type() != nil {
		fmt.Fprintf(&p.sb, " :: %s", expr.Type().Repr())
	}

	p.sb.WriteRune('\n')
}

// nested prints each child one indent level deeper.
func (p *printer) nested(children ...ASTNode) {
	p.indent++
	for _, child := range children {
		p.node(child)
	}
	p.indent--
}

func (p *printer) node(node ASTNode) {
	switch v := node.(type) {
	case *Definition:
		binder := "let"
		if v.Impure {
			binder = "let~"
		}

		if v.Attr != nil {
			p.line(v, "%s %s @[%s %s]", binder, v.Name, v.Attr.Name, strings.Join(v.Attr.Args, " "))
		} else {
			p.line(v, "%s %s", binder, v.Name)
		}

		p.nested(v.Body)
	case *TypeDecl:
		p.line(v, "type %s", v.Name)

		p.indent++
		for _, variant := range v.Variants {
			fields := make([]string, len(variant.Fields))
			for i, field := range variant.Fields {
				fields[i] = fmt.Sprintf("%s: %s", field.Name, field.Ann.Repr())
			}

			if len(fields) == 0 {
				p.line(nil, "| %s", variant.Name)
			} else {
				p.line(nil, "| %s { %s }", variant.Name, strings.Join(fields, ", "))
			}
		}
		p.indent--
	case *Import:
		p.line(v, "import %s", v.ModName)
	case *Literal:
		switch v.Kind {
		case LitString:
			p.line(v, "lit %q", v.Value)
		default:
			p.line(v, "lit %s", v.Value)
		}
	case *Void:
		p.line(v, "void")
	case *Ellipsis:
		p.line(v, "ellipsis")
	case *Name:
		p.line(v, "name %s", v.Name)
	case *ListLit:
		p.line(v, "list")
		p.nested(exprNodes(v.Elems)...)
	case *Lambda:
		params := make([]string, len(v.Params))
		for i, param := range v.Params {
			params[i] = param.Name
		}

		p.line(v, "fn %s", strings.Join(params, ", "))
		p.nested(v.Body)
	case *Apply:
		if p.typed && v.Saturated {
			p.line(v, "call")
		} else {
			p.line(v, "apply")
		}

		p.nested(append([]ASTNode{v.Func}, exprNodes(v.Args)...)...)
	case *Block:
		p.line(v, "block")
		p.nested(v.Stmts...)
	case *Branch:
		p.line(v, "branch")

		p.indent++
		for _, path := range v.Paths {
			if path.Cond == nil {
				p.line(nil, "else")
			} else {
				p.line(nil, "cond")
				p.nested(path.Cond)
			}

			p.nested(path.Body)
		}
		p.indent--
	case *FieldAccess:
		p.line(v, "field .%s", v.Field)
		p.nested(v.Root)
	case *VarStmt:
		p.line(v, "var %s", v.Name)
		p.nested(v.Init)
	case *AssignStmt:
		p.line(v, "assign %s", v.Name)
		p.nested(v.Value)
	case *LoopStmt:
		p.line(v, "loop")
		p.nested(v.Body)
	case *WhileStmt:
		p.line(v, "while")
		p.nested(v.Cond, v.Body)
	case *BreakStmt:
		p.line(v, "break")
	default:
		p.line(nil, "<%T>", node)
	}
}

func exprNodes(exprs []Expr) []ASTNode {
	nodes := make([]ASTNode, len(exprs))
	for i, expr := range exprs {
		nodes[i] = expr
	}

	return nodes
}
