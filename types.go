package main

// TypeKind discriminates the Type variant.
type TypeKind int

const (
	TypeInteger TypeKind = iota
	TypeString
	TypeChar
	TypeBoolean
	TypeAuto
	TypeFunction
	TypeArray
	TypeVoid
)

// Type is a B-minor type. Types are values: every holder owns its own deep
// copy, so mutating one (for example when auto inference patches it) never
// affects another.
type Type struct {
	Kind TypeKind
	// TypeFunction: return type. TypeArray: element type.
	Subtype *Type
	// TypeFunction only.
	Params ParamList
	// TypeArray only; nil for a size-less array.
	Size *Expr
}

func NewType(kind TypeKind) *Type {
	return &Type{Kind: kind}
}

func NewArrayType(elem *Type, size *Expr) *Type {
	return &Type{Kind: TypeArray, Subtype: elem, Size: size}
}

func NewFunctionType(ret *Type, params ParamList) *Type {
	return &Type{Kind: TypeFunction, Subtype: ret, Params: params}
}

// TypesEqual compares two types structurally. A nil type equals nothing,
// including another nil.
//
// Function types compare their parameter lists by name as well as by type,
// so function(x: integer) and function(y: integer) are different types.
func TypesEqual(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case TypeArray:
		if a.Size == nil && b.Size == nil {
			return TypesEqual(a.Subtype, b.Subtype)
		}
		if a.Size == nil || b.Size == nil {
			return false
		}
		return TypesEqual(a.Subtype, b.Subtype) && a.Size.Integer == b.Size.Integer
	case TypeFunction:
		return TypesEqual(a.Subtype, b.Subtype) && ParamsEqual(a.Params, b.Params)
	default:
		return true
	}
}

// Copy returns a deep copy of t. Copy of nil is nil.
func (t *Type) Copy() *Type {
	if t == nil {
		return nil
	}
	return &Type{
		Kind:    t.Kind,
		Subtype: t.Subtype.Copy(),
		Params:  t.Params.Copy(),
		Size:    t.Size.Copy(),
	}
}

func (t *Type) Is(kind TypeKind) bool {
	return t != nil && t.Kind == kind
}

// ArrayLength returns the element count of a fixed-size array type. ok is
// false when the size is absent or is not a nonnegative integer literal.
func (t *Type) ArrayLength() (n int, ok bool) {
	if t == nil || t.Kind != TypeArray || t.Size == nil || t.Size.Kind != ExprIntegerLiteral {
		return 0, false
	}
	if t.Size.Integer < 0 {
		return 0, false
	}
	return int(t.Size.Integer), true
}

// Slots is the number of 8-byte stack slots a local of type t occupies.
func (t *Type) Slots() int {
	if n, ok := t.ArrayLength(); ok {
		return n
	}
	return 1
}

// IsAtomic reports whether values of t fit in one register and can be
// printed, returned, and compared.
func (t *Type) IsAtomic() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypeInteger, TypeString, TypeChar, TypeBoolean:
		return true
	}
	return false
}

// Name is the short word used for a type kind in messages.
func (t *Type) Name() string {
	if t == nil {
		return "unknown"
	}
	switch t.Kind {
	case TypeBoolean:
		return "boolean"
	case TypeChar:
		return "char"
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeArray:
		return "array"
	case TypeFunction:
		return "function"
	case TypeVoid:
		return "void"
	case TypeAuto:
		return "auto"
	default:
		return "unknown"
	}
}
