package main

type Scope string

const (
	InvalidScope  Scope = ""
	FunctionScope Scope = "subroutine"
	ClassScope    Scope = "class"
)

type scopeTable struct {
	symbols map[string]Symbol
	counts  map[Kind]MachineWord
}

func newScopeTable() *scopeTable {
	return &scopeTable{
		symbols: make(map[string]Symbol),
		counts:  make(map[Kind]MachineWord),
	}
}

// SymbolTable holds the class scope (statics and fields) and the subroutine
// scope (arguments and locals). Lookups try the subroutine scope first.
type SymbolTable struct {
	classScopeTable    *scopeTable
	functionScopeTable *scopeTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classScopeTable:    newScopeTable(),
		functionScopeTable: newScopeTable(),
	}
}

func (s *SymbolTable) table(kind Kind) *scopeTable {
	switch kind.Scope() {
	case ClassScope:
		return s.classScopeTable
	case FunctionScope:
		return s.functionScopeTable
	}
	return nil
}

// Define adds name to the scope selected by kind. The index is the number of
// symbols of that kind already defined there.
func (s *SymbolTable) Define(name, variableType string, kind Kind) (Symbol, error) {
	table := s.table(kind)
	if table == nil {
		return Symbol{}, &DefinitionError{Name: name, Kind: kind}
	}
	if _, ok := table.symbols[name]; ok {
		return Symbol{}, &DefinitionError{Name: name, Kind: kind}
	}

	symbol := Symbol{kind: kind, variableType: variableType, index: table.counts[kind]}
	table.symbols[name] = symbol
	table.counts[kind]++
	return symbol, nil
}

// VarCount is the number of symbols of kind in the scope kind belongs to.
func (s *SymbolTable) VarCount(kind Kind) MachineWord {
	table := s.table(kind)
	if table == nil {
		return 0
	}
	return table.counts[kind]
}

func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	if symbol, ok := s.functionScopeTable.symbols[name]; ok {
		return symbol, true
	}
	symbol, ok := s.classScopeTable.symbols[name]
	return symbol, ok
}

// KindOf returns NoKind for unknown names.
func (s *SymbolTable) KindOf(name string) Kind {
	symbol, _ := s.Lookup(name)
	return symbol.kind
}

// TypeOf returns "" for unknown names.
func (s *SymbolTable) TypeOf(name string) string {
	symbol, _ := s.Lookup(name)
	return symbol.variableType
}

// IndexOf returns -1 for unknown names.
func (s *SymbolTable) IndexOf(name string) MachineWord {
	symbol, ok := s.Lookup(name)
	if !ok {
		return -1
	}
	return symbol.index
}

// StartSubroutine clears the subroutine scope so argument and local
// numbering restarts at 0.
func (s *SymbolTable) StartSubroutine() {
	s.Clear(FunctionScope)
}

// Clear empties scope. Clearing the class scope clears both, since a new
// class also starts without a current subroutine.
func (s *SymbolTable) Clear(scope Scope) {
	switch scope {
	case ClassScope:
		s.classScopeTable = newScopeTable()
		fallthrough
	case FunctionScope:
		s.functionScopeTable = newScopeTable()
	}
}
