package main

// scope maps names declared in one lexical block to their symbols.
type scope map[string]SymbolID

// ScopeStack is the stack of lexical scopes used during resolution. The
// bottom scope is the global scope.
type ScopeStack struct {
	scopes []scope
}

func NewScopeStack() *ScopeStack {
	return &ScopeStack{}
}

// Enter pushes a fresh empty scope.
func (s *ScopeStack) Enter() {
	s.scopes = append(s.scopes, make(scope))
}

// Exit pops the innermost scope. Its symbols stay in the SymbolTable so
// that expressions resolved against them remain valid.
func (s *ScopeStack) Exit() {
	if len(s.scopes) > 0 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// Level is the number of active scopes; 1 means only the global scope.
func (s *ScopeStack) Level() int {
	return len(s.scopes)
}

// Bind binds name in the innermost scope, replacing any previous binding of
// the same name in that scope.
func (s *ScopeStack) Bind(name string, id SymbolID) {
	if len(s.scopes) == 0 {
		s.Enter()
	}
	s.scopes[len(s.scopes)-1][name] = id
}

// Lookup searches from the innermost scope outward.
func (s *ScopeStack) Lookup(name string) SymbolID {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if id, ok := s.scopes[i][name]; ok {
			return id
		}
	}
	return NoSymbol
}

// LookupCurrent searches the innermost scope only.
func (s *ScopeStack) LookupCurrent(name string) SymbolID {
	if len(s.scopes) == 0 {
		return NoSymbol
	}
	return s.scopes[len(s.scopes)-1][name]
}
