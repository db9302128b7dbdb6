package main

import (
	"strconv"
	"strings"
)

// FormatExpr renders an expression as B-minor source text. It is used to
// quote the offending construct in diagnostics.
func FormatExpr(e *Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e *Expr) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ExprIntegerLiteral:
		b.WriteString(strconv.FormatInt(e.Integer, 10))
	case ExprCharLiteral:
		b.WriteByte('\'')
		b.WriteString(escapeText(string([]byte{byte(e.Integer)}), '\''))
		b.WriteByte('\'')
	case ExprBooleanLiteral:
		if e.Integer != 0 {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case ExprStringLiteral:
		b.WriteByte('"')
		b.WriteString(escapeText(e.Str, '"'))
		b.WriteByte('"')
	case ExprName:
		b.WriteString(e.Name)
	case ExprCall:
		writeExpr(b, e.Left)
		b.WriteByte('(')
		writeExprList(b, e.Args)
		b.WriteByte(')')
	case ExprInitList:
		b.WriteByte('{')
		writeExprList(b, e.Elems)
		b.WriteByte('}')
	case ExprSubscript:
		writeExpr(b, e.Left)
		b.WriteByte('[')
		writeExpr(b, e.Right)
		b.WriteByte(']')
	case ExprNot, ExprNegate:
		b.WriteString(e.Kind.Op())
		writeExpr(b, e.Left)
	case ExprInc, ExprDec:
		writeExpr(b, e.Left)
		b.WriteString(e.Kind.Op())
	case ExprGroup:
		b.WriteByte('(')
		writeExpr(b, e.Left)
		b.WriteByte(')')
	default:
		if e.Kind.IsBinary() {
			writeExpr(b, e.Left)
			b.WriteString(" " + e.Kind.Op() + " ")
			writeExpr(b, e.Right)
		} else {
			b.WriteString("<?>")
		}
	}
}

func writeExprList(b *strings.Builder, list []*Expr) {
	for i, e := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, e)
	}
}

// escapeText is the inverse of the string reader's escape handling.
func escapeText(s string, quote byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		case '\\':
			b.WriteString(`\\`)
		case quote:
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// String renders a type the way it is written in declarations, for example
// "array [3] integer" or "function integer (x: integer)".
func (t *Type) String() string {
	if t == nil {
		return "unknown"
	}
	switch t.Kind {
	case TypeArray:
		return "array [" + FormatExpr(t.Size) + "] " + t.Subtype.String()
	case TypeFunction:
		return "function " + t.Subtype.String() + " (" + t.Params.String() + ")"
	default:
		return t.Name()
	}
}

func (pl ParamList) String() string {
	parts := make([]string, len(pl))
	for i, p := range pl {
		parts[i] = p.Name + ": " + p.Type.String()
	}
	return strings.Join(parts, ", ")
}

// FormatDecl renders a declaration header, without a function body.
func FormatDecl(d *Decl) string {
	var b strings.Builder
	b.WriteString(d.Name)
	b.WriteString(": ")
	b.WriteString(d.Type.String())
	if d.Value != nil {
		b.WriteString(" = ")
		writeExpr(&b, d.Value)
	}
	if d.Body != nil {
		b.WriteString(" = {...}")
	} else {
		b.WriteByte(';')
	}
	return b.String()
}
