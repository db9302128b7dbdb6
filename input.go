package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/strager/bminor/sexy"
)

// ParseProgram reads a program tree from its s-expression form.
func ParseProgram(src string) (*Program, error) {
	node, err := sexy.Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "reading program")
	}
	return ReadProgram(node)
}

// ReadProgram converts a (program decl*) datum into declarations.
func ReadProgram(n *sexy.Node) (*Program, error) {
	if n.Head() != "program" {
		return nil, errors.Errorf("line %d: expected (program ...) but got %s", n.Line, n)
	}
	prog := &Program{}
	for _, item := range n.Args() {
		decl, err := readDecl(item)
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog, nil
}

func malformed(n *sexy.Node, what string) error {
	return errors.Errorf("line %d: malformed %s: %s", n.Line, what, n)
}

func readDecl(n *sexy.Node) (*Decl, error) {
	head := n.Head()
	args := n.Args()
	if (head != "var" && head != "func") || len(args) < 2 {
		return nil, malformed(n, "declaration")
	}
	name, err := readIdent(args[0])
	if err != nil {
		return nil, err
	}
	typ, err := readType(args[1])
	if err != nil {
		return nil, err
	}
	decl := &Decl{Name: name, Type: typ}

	switch head {
	case "var":
		if len(args) > 3 {
			return nil, malformed(n, "declaration")
		}
		if len(args) == 3 {
			if decl.Value, err = readExpr(args[2]); err != nil {
				return nil, err
			}
		}
	case "func":
		if len(args) != 3 {
			return nil, malformed(n, "function definition")
		}
		if !typ.Is(TypeFunction) {
			return nil, errors.Errorf("line %d: function %s must have a function type", n.Line, name)
		}
		if decl.Body, err = readStmt(args[2]); err != nil {
			return nil, err
		}
	}
	return decl, nil
}

// readIdent accepts (ident NAME) where NAME is a symbol or a string.
func readIdent(n *sexy.Node) (string, error) {
	args := n.Args()
	if n.Head() != "ident" || len(args) != 1 {
		return "", malformed(n, "identifier")
	}
	return readText(args[0])
}

func readText(n *sexy.Node) (string, error) {
	if n.Type != sexy.NodeSymbol && n.Type != sexy.NodeString {
		return "", errors.Errorf("line %d: expected a name but got %s", n.Line, n)
	}
	return n.Text, nil
}

var typeKeywords = map[string]TypeKind{
	"integer": TypeInteger,
	"boolean": TypeBoolean,
	"char":    TypeChar,
	"string":  TypeString,
	"void":    TypeVoid,
	"auto":    TypeAuto,
}

func readType(n *sexy.Node) (*Type, error) {
	if n.Type == sexy.NodeSymbol {
		kind, ok := typeKeywords[n.Text]
		if !ok {
			return nil, errors.Errorf("line %d: unknown type %s", n.Line, n.Text)
		}
		return NewType(kind), nil
	}

	args := n.Args()
	switch n.Head() {
	case "array":
		switch len(args) {
		case 1:
			elem, err := readType(args[0])
			if err != nil {
				return nil, err
			}
			return NewArrayType(elem, nil), nil
		case 2:
			size, err := readExpr(args[0])
			if err != nil {
				return nil, err
			}
			elem, err := readType(args[1])
			if err != nil {
				return nil, err
			}
			return NewArrayType(elem, size), nil
		}
	case "function":
		if len(args) == 0 {
			break
		}
		ret, err := readType(args[0])
		if err != nil {
			return nil, err
		}
		var params ParamList
		for _, p := range args[1:] {
			pargs := p.Args()
			if p.Head() != "param" || len(pargs) != 2 {
				return nil, malformed(p, "parameter")
			}
			name, err := readText(pargs[0])
			if err != nil {
				return nil, err
			}
			ptype, err := readType(pargs[1])
			if err != nil {
				return nil, err
			}
			params = append(params, &Param{Name: name, Type: ptype})
		}
		return NewFunctionType(ret, params), nil
	}
	return nil, malformed(n, "type")
}

func readStmt(n *sexy.Node) (*Stmt, error) {
	args := n.Args()
	switch n.Head() {
	case "var", "func":
		decl, err := readDecl(n)
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtDecl, Decl: decl}, nil

	case "expr":
		if len(args) != 1 {
			return nil, malformed(n, "expression statement")
		}
		e, err := readExpr(args[0])
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtExpr, Expr: e}, nil

	case "if":
		if len(args) < 2 || len(args) > 3 {
			return nil, malformed(n, "if statement")
		}
		cond, err := readExpr(args[0])
		if err != nil {
			return nil, err
		}
		s := &Stmt{Kind: StmtIfElse, Cond: cond}
		if s.Body, err = readStmt(args[1]); err != nil {
			return nil, err
		}
		if len(args) == 3 {
			if s.Else, err = readStmt(args[2]); err != nil {
				return nil, err
			}
		}
		return s, nil

	case "for":
		if len(args) != 4 {
			return nil, malformed(n, "for statement")
		}
		var clauses [3]*Expr
		for i := range clauses {
			if args[i].IsSymbol("nil") {
				continue
			}
			e, err := readExpr(args[i])
			if err != nil {
				return nil, err
			}
			clauses[i] = e
		}
		body, err := readStmt(args[3])
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtFor, Init: clauses[0], Cond: clauses[1], Next: clauses[2], Body: body}, nil

	case "print":
		exprs, err := readExprs(args)
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtPrint, Exprs: exprs}, nil

	case "return":
		s := &Stmt{Kind: StmtReturn}
		switch len(args) {
		case 0:
		case 1:
			e, err := readExpr(args[0])
			if err != nil {
				return nil, err
			}
			s.Expr = e
		default:
			return nil, malformed(n, "return statement")
		}
		return s, nil

	case "block":
		s := &Stmt{Kind: StmtBlock}
		for _, item := range args {
			child, err := readStmt(item)
			if err != nil {
				return nil, err
			}
			s.Stmts = append(s.Stmts, child)
		}
		return s, nil
	}
	return nil, malformed(n, "statement")
}

func readExprs(nodes []*sexy.Node) ([]*Expr, error) {
	var out []*Expr
	for _, n := range nodes {
		e, err := readExpr(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func readExpr(n *sexy.Node) (*Expr, error) {
	args := n.Args()
	switch n.Head() {
	case "integer":
		if len(args) != 1 || args[0].Type != sexy.NodeInteger {
			return nil, malformed(n, "integer literal")
		}
		v, err := strconv.ParseInt(args[0].Text, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", n.Line)
		}
		return NewIntegerLiteral(v), nil

	case "boolean":
		if len(args) != 1 || !(args[0].IsSymbol("true") || args[0].IsSymbol("false")) {
			return nil, malformed(n, "boolean literal")
		}
		return NewBooleanLiteral(args[0].Text == "true"), nil

	case "char":
		if len(args) != 1 || args[0].Type != sexy.NodeString || len(args[0].Text) != 1 {
			return nil, malformed(n, "char literal")
		}
		return NewCharLiteral(args[0].Text[0]), nil

	case "string":
		if len(args) != 1 || args[0].Type != sexy.NodeString {
			return nil, malformed(n, "string literal")
		}
		return NewStringLiteral(args[0].Text), nil

	case "ident":
		name, err := readIdent(n)
		if err != nil {
			return nil, err
		}
		return NewName(name), nil

	case "binary":
		if len(args) != 3 {
			return nil, malformed(n, "binary expression")
		}
		kind, err := readOp(args[0], binaryOps)
		if err != nil {
			return nil, err
		}
		left, err := readExpr(args[1])
		if err != nil {
			return nil, err
		}
		right, err := readExpr(args[2])
		if err != nil {
			return nil, err
		}
		return NewBinary(kind, left, right), nil

	case "unary", "postfix":
		if len(args) != 2 {
			return nil, malformed(n, n.Head()+" expression")
		}
		table := unaryOps
		if n.Head() == "postfix" {
			table = postfixOps
		}
		kind, err := readOp(args[0], table)
		if err != nil {
			return nil, err
		}
		operand, err := readExpr(args[1])
		if err != nil {
			return nil, err
		}
		return NewUnary(kind, operand), nil

	case "idx":
		if len(args) != 2 {
			return nil, malformed(n, "subscript")
		}
		base, err := readExpr(args[0])
		if err != nil {
			return nil, err
		}
		index, err := readExpr(args[1])
		if err != nil {
			return nil, err
		}
		return NewSubscript(base, index), nil

	case "call":
		if len(args) < 1 {
			return nil, malformed(n, "call")
		}
		name, err := readIdent(args[0])
		if err != nil {
			return nil, err
		}
		actuals, err := readExprs(args[1:])
		if err != nil {
			return nil, err
		}
		return NewCall(name, actuals...), nil

	case "group":
		if len(args) != 1 {
			return nil, malformed(n, "group")
		}
		inner, err := readExpr(args[0])
		if err != nil {
			return nil, err
		}
		return NewGroup(inner), nil

	case "init-list":
		elems, err := readExprs(args)
		if err != nil {
			return nil, err
		}
		return NewInitList(elems...), nil
	}
	return nil, malformed(n, "expression")
}

func readOp(n *sexy.Node, table map[string]ExprKind) (ExprKind, error) {
	op, err := readText(n)
	if err != nil {
		return 0, err
	}
	kind, ok := table[op]
	if !ok {
		return 0, errors.Errorf("line %d: unknown operator %q", n.Line, op)
	}
	return kind, nil
}

// ToSExpr renders a program in the form ParseProgram reads.
func ToSExpr(prog *Program) string {
	items := []*sexy.Node{sexy.NewSymbol("program")}
	for _, d := range prog.Decls {
		items = append(items, declNode(d))
	}
	return sexy.NewList(items...).String()
}

func identNode(name string) *sexy.Node {
	return sexy.NewList(sexy.NewSymbol("ident"), sexy.NewString(name))
}

func declNode(d *Decl) *sexy.Node {
	typ := d.Type
	if d.DeclaredAuto {
		typ = NewType(TypeAuto)
	}
	if d.Body != nil {
		return sexy.NewList(sexy.NewSymbol("func"), identNode(d.Name), typeNode(typ), stmtNode(d.Body))
	}
	items := []*sexy.Node{sexy.NewSymbol("var"), identNode(d.Name), typeNode(typ)}
	if d.Value != nil {
		items = append(items, exprNode(d.Value))
	}
	return sexy.NewList(items...)
}

func typeNode(t *Type) *sexy.Node {
	switch t.Kind {
	case TypeArray:
		if t.Size == nil {
			return sexy.NewList(sexy.NewSymbol("array"), typeNode(t.Subtype))
		}
		return sexy.NewList(sexy.NewSymbol("array"), exprNode(t.Size), typeNode(t.Subtype))
	case TypeFunction:
		items := []*sexy.Node{sexy.NewSymbol("function"), typeNode(t.Subtype)}
		for _, p := range t.Params {
			items = append(items, sexy.NewList(sexy.NewSymbol("param"), sexy.NewString(p.Name), typeNode(p.Type)))
		}
		return sexy.NewList(items...)
	default:
		return sexy.NewSymbol(t.Name())
	}
}

func stmtNode(s *Stmt) *sexy.Node {
	sym := sexy.NewSymbol
	switch s.Kind {
	case StmtDecl:
		return declNode(s.Decl)
	case StmtExpr:
		return sexy.NewList(sym("expr"), exprNode(s.Expr))
	case StmtIfElse:
		items := []*sexy.Node{sym("if"), exprNode(s.Cond), stmtNode(s.Body)}
		if s.Else != nil {
			items = append(items, stmtNode(s.Else))
		}
		return sexy.NewList(items...)
	case StmtFor:
		return sexy.NewList(sym("for"), optExprNode(s.Init), optExprNode(s.Cond), optExprNode(s.Next), stmtNode(s.Body))
	case StmtPrint:
		return sexy.NewList(append([]*sexy.Node{sym("print")}, exprNodes(s.Exprs)...)...)
	case StmtReturn:
		if s.Expr == nil {
			return sexy.NewList(sym("return"))
		}
		return sexy.NewList(sym("return"), exprNode(s.Expr))
	case StmtBlock:
		items := []*sexy.Node{sym("block")}
		for _, child := range s.Stmts {
			items = append(items, stmtNode(child))
		}
		return sexy.NewList(items...)
	}
	return sym("nil")
}

func optExprNode(e *Expr) *sexy.Node {
	if e == nil {
		return sexy.NewSymbol("nil")
	}
	return exprNode(e)
}

func exprNodes(list []*Expr) []*sexy.Node {
	out := make([]*sexy.Node, len(list))
	for i, e := range list {
		out[i] = exprNode(e)
	}
	return out
}

func exprNode(e *Expr) *sexy.Node {
	sym := sexy.NewSymbol
	switch e.Kind {
	case ExprIntegerLiteral:
		return sexy.NewList(sym("integer"), sexy.NewInteger(strconv.FormatInt(e.Integer, 10)))
	case ExprBooleanLiteral:
		if e.Integer != 0 {
			return sexy.NewList(sym("boolean"), sym("true"))
		}
		return sexy.NewList(sym("boolean"), sym("false"))
	case ExprCharLiteral:
		return sexy.NewList(sym("char"), sexy.NewString(string([]byte{byte(e.Integer)})))
	case ExprStringLiteral:
		return sexy.NewList(sym("string"), sexy.NewString(e.Str))
	case ExprName:
		return identNode(e.Name)
	case ExprNot, ExprNegate:
		return sexy.NewList(sym("unary"), sexy.NewString(e.Kind.Op()), exprNode(e.Left))
	case ExprInc, ExprDec:
		return sexy.NewList(sym("postfix"), sexy.NewString(e.Kind.Op()), exprNode(e.Left))
	case ExprSubscript:
		return sexy.NewList(sym("idx"), exprNode(e.Left), exprNode(e.Right))
	case ExprCall:
		items := []*sexy.Node{sym("call"), identNode(e.Left.Name)}
		return sexy.NewList(append(items, exprNodes(e.Args)...)...)
	case ExprGroup:
		return sexy.NewList(sym("group"), exprNode(e.Left))
	case ExprInitList:
		return sexy.NewList(append([]*sexy.Node{sym("init-list")}, exprNodes(e.Elems)...)...)
	}
	return sexy.NewList(sym("binary"), sexy.NewString(e.Kind.Op()), exprNode(e.Left), exprNode(e.Right))
}
