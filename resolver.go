package main

// Resolver binds every name in a program to a symbol and assigns storage
// ordinals. It reports undefined names and redeclarations but never stops.
type Resolver struct {
	Symbols *SymbolTable
	// Diag receives resolution diagnostics. It may be swapped between
	// programs resolved in the same global scope.
	Diag   *Diagnostics
	scopes *ScopeStack

	// ordinal is the next free stack slot of the function being resolved.
	ordinal int
	// defined marks function symbols that already have a body.
	defined map[SymbolID]bool
}

func NewResolver(symbols *SymbolTable, diag *Diagnostics) *Resolver {
	r := &Resolver{
		Symbols: symbols,
		scopes:  NewScopeStack(),
		Diag:    diag,
		defined: make(map[SymbolID]bool),
	}
	r.scopes.Enter()
	return r
}

// ResolveProgram resolves every top-level declaration in order. The global
// scope stays active afterwards so a later program can refer to earlier
// globals.
func (r *Resolver) ResolveProgram(prog *Program) {
	for _, d := range prog.Decls {
		r.resolveDecl(d)
	}
}

// Lookup finds the symbol a name refers to in the current scope chain.
func (r *Resolver) Lookup(name string) *Symbol {
	return r.Symbols.Get(r.scopes.Lookup(name))
}

func (r *Resolver) resolveDecl(d *Decl) {
	global := r.scopes.Level() <= 1

	// The initializer cannot see the name it initializes.
	r.resolveExpr(d.Value)

	if d.Type.Is(TypeAuto) {
		d.DeclaredAuto = true
		if d.Value == nil {
			r.Diag.Typef("%s is declared auto but has no initializer", d.Name)
		} else if t := NewTypeChecker(r.Symbols, nil).CheckInitializer(d.Value); t != nil {
			d.Type = t.Copy()
		}
	}

	if d.Body != nil && !global {
		r.Diag.Resolvef("function %s must be defined at global scope", d.Name)
		d.Symbol = r.Symbols.Create(SymbolLocal, d.Name, d.Type, 0)
		return
	}

	d.Symbol = r.bind(d, global)

	if d.Body != nil {
		r.resolveFunctionBody(d)
	}
}

// bind creates the symbol for d, or reuses the symbol of a matching
// prototype.
func (r *Resolver) bind(d *Decl, global bool) SymbolID {
	kind := SymbolLocal
	if global {
		kind = SymbolGlobal
	}

	if existing := r.scopes.LookupCurrent(d.Name); existing != NoSymbol {
		sym := r.Symbols.Get(existing)
		if global && sym.Type.Is(TypeFunction) && d.Type.Is(TypeFunction) && !r.defined[existing] {
			if TypesEqual(sym.Type, d.Type) {
				if d.Body != nil {
					r.defined[existing] = true
				}
				return existing
			}
			r.Diag.Typef("function definition does not match its prototype (%s was declared as %s)", d.Name, sym.Type)
		} else {
			r.Diag.Resolvef("%s is already declared in this scope", d.Name)
		}
		// The declaration keeps a symbol of its own but the name stays bound
		// to the first one.
		return r.Symbols.Create(kind, d.Name, d.Type, r.allocOrdinal(kind, d.Type))
	}

	id := r.Symbols.Create(kind, d.Name, d.Type, r.allocOrdinal(kind, d.Type))
	r.scopes.Bind(d.Name, id)
	if d.Body != nil {
		r.defined[id] = true
	}
	return id
}

func (r *Resolver) allocOrdinal(kind SymbolKind, t *Type) int {
	if kind == SymbolGlobal {
		return 0
	}
	o := r.ordinal
	r.ordinal += t.Slots()
	return o
}

func (r *Resolver) resolveFunctionBody(d *Decl) {
	r.ordinal = 0
	r.scopes.Enter()
	for _, p := range d.Type.Params {
		p.Symbol = r.Symbols.Create(SymbolParam, p.Name, p.Type, r.ordinal)
		// Array parameters hold an address.
		r.ordinal++
		if r.scopes.LookupCurrent(p.Name) != NoSymbol {
			r.Diag.Resolvef("parameter %s is declared twice", p.Name)
			continue
		}
		r.scopes.Bind(p.Name, p.Symbol)
	}

	// The outermost block of a body shares the parameters' scope.
	if d.Body.Kind == StmtBlock {
		for _, s := range d.Body.Stmts {
			r.resolveStmt(s)
		}
	} else {
		r.resolveStmt(d.Body)
	}

	r.scopes.Exit()
	d.FrameSlots = r.ordinal
	r.ordinal = 0
}

func (r *Resolver) resolveStmt(s *Stmt) {
	if s == nil {
		return
	}
	switch s.Kind {
	case StmtDecl:
		r.resolveDecl(s.Decl)
	case StmtExpr, StmtReturn:
		r.resolveExpr(s.Expr)
	case StmtIfElse:
		r.resolveExpr(s.Cond)
		r.resolveNested(s.Body)
		r.resolveNested(s.Else)
	case StmtFor:
		r.resolveExpr(s.Init)
		r.resolveExpr(s.Cond)
		r.resolveExpr(s.Next)
		r.resolveNested(s.Body)
	case StmtPrint:
		for _, e := range s.Exprs {
			r.resolveExpr(e)
		}
	case StmtBlock:
		r.scopes.Enter()
		for _, child := range s.Stmts {
			r.resolveStmt(child)
		}
		r.scopes.Exit()
	}
}

// resolveNested resolves the body of an if or for in a scope of its own.
func (r *Resolver) resolveNested(s *Stmt) {
	if s == nil {
		return
	}
	r.scopes.Enter()
	r.resolveStmt(s)
	r.scopes.Exit()
}

func (r *Resolver) resolveExpr(e *Expr) {
	if e == nil {
		return
	}
	if e.Kind == ExprName {
		e.Symbol = r.scopes.Lookup(e.Name)
		if e.Symbol == NoSymbol {
			r.Diag.Resolvef("%s is not defined", e.Name)
		}
		return
	}
	r.resolveExpr(e.Left)
	r.resolveExpr(e.Right)
	for _, arg := range e.Args {
		r.resolveExpr(arg)
	}
	for _, elem := range e.Elems {
		r.resolveExpr(elem)
	}
}
