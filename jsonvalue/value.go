package jsonvalue

import (
	"math"
	"strconv"
)

// Kind identifies the runtime kind of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindRef
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "boolean",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
	KindRef:    "reference",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a decoded JSON value. The set of implementations is closed:
// Null, Bool, Number, String, Array, *Object and *Ref.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// String is a JSON string.
type String string

// Array is a JSON array.
type Array []Value

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (String) isValue() {}
func (Array) isValue()  {}

// Number is a JSON number. It remembers whether the source literal was
// integral so keywords that demand an integer can reject "2.0".
type Number struct {
	f        float64
	i        int64
	integral bool
}

// Int returns an integral Number.
func Int(n int64) Number {
	return Number{f: float64(n), i: n, integral: true}
}

// Float returns a Number from a float literal.
func Float(f float64) Number {
	return Number{f: f}
}

// ParseNumber parses a JSON number literal.
func ParseNumber(lit string) (Number, error) {
	if isIntegerLiteral(lit) {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int(n), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Number{}, err
	}
	return Float(f), nil
}

func isIntegerLiteral(lit string) bool {
	if lit == "" {
		return false
	}
	for i, c := range lit {
		if c == '-' && i == 0 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (Number) Kind() Kind { return KindNumber }
func (Number) isValue()   {}

// Float64 returns the numeric value.
func (n Number) Float64() float64 { return n.f }

// Int64 returns the value of an integral literal and whether it was one.
func (n Number) Int64() (int64, bool) { return n.i, n.integral }

// IsIntegerLiteral reports whether the number was written without a fraction
// or exponent.
func (n Number) IsIntegerLiteral() bool { return n.integral }

// IsIntegral reports whether the number has no fractional part, so 1.000
// counts as an integer.
func (n Number) IsIntegral() bool {
	if n.integral {
		return true
	}
	return !math.IsInf(n.f, 0) && !math.IsNaN(n.f) && n.f == math.Trunc(n.f)
}

func (n Number) String() string {
	if n.integral {
		return strconv.FormatInt(n.i, 10)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// Object is a JSON object that keeps its members in insertion order.
type Object struct {
	keys   []string
	fields map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) isValue()   {}

// Get returns the member named key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Set stores a member. An existing key keeps its position.
func (o *Object) Set(key string, v Value) {
	if o.fields == nil {
		o.fields = make(map[string]Value)
	}
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Keys returns the member names in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Resolver resolves an absolute URI with an optional pointer fragment to a
// value. The reference cache implements it.
type Resolver interface {
	Pointer(target string) (Value, error)
}

// Ref is a reference slot rewritten to a handle on its target. The target is
// looked up through the Resolver on every access, so documents may refer to
// each other cyclically without owning each other.
type Ref struct {
	// Raw is the original $ref text.
	Raw string
	// Target is the absolute target URI including the pointer fragment.
	Target string

	resolver Resolver
}

// NewRef returns a reference handle bound to r.
func NewRef(raw, target string, r Resolver) *Ref {
	return &Ref{Raw: raw, Target: target, resolver: r}
}

// Bind attaches the reference to a different resolver. It must not be called
// once the reference is visible to other goroutines.
func (r *Ref) Bind(res Resolver) { r.resolver = res }

func (*Ref) Kind() Kind { return KindRef }
func (*Ref) isValue()   {}

// Resolve follows the reference, and any reference it lands on, until a
// non-reference value is reached.
func (r *Ref) Resolve() (Value, error) {
	seen := map[string]bool{}
	var cur Value = r
	for {
		ref, ok := cur.(*Ref)
		if !ok {
			return cur, nil
		}
		if seen[ref.Target] {
			return nil, &CycleError{Target: ref.Target}
		}
		seen[ref.Target] = true
		if ref.resolver == nil {
			return nil, &UnboundRefError{Target: ref.Target}
		}
		next, err := ref.resolver.Pointer(ref.Target)
		if err != nil {
			return nil, err
		}
		cur = next
	}
}

// Deref returns v, or the value it refers to when v is a *Ref.
func Deref(v Value) (Value, error) {
	if ref, ok := v.(*Ref); ok {
		return ref.Resolve()
	}
	return v, nil
}

// RefKeyword is the reserved member name of a JSON Reference.
const RefKeyword = "$ref"

// IsReference reports whether v is a JSON Reference marker and returns its
// pointer text.
func IsReference(v Value) (string, bool) {
	obj, ok := v.(*Object)
	if !ok {
		return "", false
	}
	raw, ok := obj.Get(RefKeyword)
	if !ok {
		return "", false
	}
	s, ok := raw.(String)
	if !ok {
		return "", false
	}
	return string(s), true
}
