package main

// Param is one formal parameter of a function type.
type Param struct {
	Name   string
	Type   *Type
	Symbol SymbolID
}

// ParamList is the ordered formal parameter list of a function type.
type ParamList []*Param

// ParamsEqual reports whether two parameter lists have the same length and
// agree pairwise on both name and type.
func ParamsEqual(a, b ParamList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !TypesEqual(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

// Copy deep-copies the parameter types. The symbol ids are shared since the
// symbols themselves live in the symbol table.
func (pl ParamList) Copy() ParamList {
	if pl == nil {
		return nil
	}
	out := make(ParamList, len(pl))
	for i, p := range pl {
		out[i] = &Param{Name: p.Name, Type: p.Type.Copy(), Symbol: p.Symbol}
	}
	return out
}
