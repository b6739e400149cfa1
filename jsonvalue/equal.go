package jsonvalue

import (
	"maps"
	"slices"
)

// Equal reports whether a and b are structurally equal. References are
// followed, member order is ignored and numbers compare by value. Cyclic
// structures compare equal when every pair met along the way does.
func Equal(a, b Value) bool {
	return equal(a, b, map[[2]*Object]bool{})
}

func equal(a, b Value, assumed map[[2]*Object]bool) bool {
	a, errA := Deref(a)
	b, errB := Deref(b)
	if errA != nil || errB != nil {
		return false
	}
	if kindOf(a) != kindOf(b) {
		return false
	}
	switch x := a.(type) {
	case nil, Null:
		return true
	case Bool:
		return x == b.(Bool)
	case String:
		return x == b.(String)
	case Number:
		return x.Float64() == b.(Number).Float64()
	case Array:
		y := b.(Array)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i], assumed) {
				return false
			}
		}
		return true
	case *Object:
		y := b.(*Object)
		if x == y {
			return true
		}
		pair := [2]*Object{x, y}
		if assumed[pair] {
			return true
		}
		if x.Len() != y.Len() {
			return false
		}
		assumed[pair] = true
		for _, k := range x.Keys() {
			xv, _ := x.Get(k)
			yv, ok := y.Get(k)
			if !ok || !equal(xv, yv, assumed) {
				return false
			}
		}
		return true
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
