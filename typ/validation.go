// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package typ

import (
	"fmt"

	"karma.run/sym/err"
	"karma.run/sym/val"
)

// IsMapType reports wether t is one of the two map kinds.
func IsMapType(t Type) bool {
	switch t.(type) {
	case Map, DefaultMap:
		return true
	}
	return false
}

// IsSizedInteger reports the bit width and signedness of fixed-width
// integer types.
func IsSizedInteger(t Type) (width int, signed, ok bool) {
	switch t.(type) {
	case Int8:
		return 8, true, true
	case Int16:
		return 16, true, true
	case Int32:
		return 32, true, true
	case Int64:
		return 64, true, true
	case Uint8:
		return 8, false, true
	case Uint16:
		return 16, false, true
	case Uint32:
		return 32, false, true
	case Uint64:
		return 64, false, true
	}
	return 0, false, false
}

// IsNumeric reports wether values of t support arithmetic and ordering.
func IsNumeric(t Type) bool {
	if _, _, ok := IsSizedInteger(t); ok {
		return true
	}
	switch t.(type) {
	case Int, Char:
		return true
	}
	return false
}

// IsSequence reports wether t is a string or list type.
func IsSequence(t Type) bool {
	switch t.(type) {
	case String, List:
		return true
	}
	return false
}

// ValidateNesting rejects the map/sequence compositions that no backend
// can encode: a map (of either kind) as the key or value type of a map,
// or as the element type of a sequence. Violations are modeling errors,
// raised before any evaluation or solving.
func ValidateNesting(t Type) err.Error {
	var e err.Error
	t.Transform(func(u Type) Type {
		if e != nil {
			return u
		}
		switch u := u.(type) {
		case List:
			if IsMapType(u.Elements) {
				e = err.ModelingError{Problem: fmt.Sprintf(`map type %s may not be a sequence element type`, u.Elements.ValueType())}
			}
		case Map:
			if IsMapType(u.Key) || IsMapType(u.Value) {
				e = err.ModelingError{Problem: `map types may not be nested inside map key or value types`}
			}
		case DefaultMap:
			if IsMapType(u.Key) || IsMapType(u.Value) {
				e = err.ModelingError{Problem: `map types may not be nested inside default-valued map key or value types`}
			}
		}
		return u
	})
	return e
}

// Conforms reports wether value v inhabits type t.
func Conforms(t Type, v val.Value) bool {
	if v == nil {
		return false
	}
	switch t := t.(type) {
	case Bool:
		_, ok := v.(val.Bool)
		return ok
	case Char:
		_, ok := v.(val.Char)
		return ok
	case String:
		_, ok := v.(val.String)
		return ok
	case Int:
		_, ok := v.(val.Int)
		return ok
	case Int8:
		_, ok := v.(val.Int8)
		return ok
	case Int16:
		_, ok := v.(val.Int16)
		return ok
	case Int32:
		_, ok := v.(val.Int32)
		return ok
	case Int64:
		_, ok := v.(val.Int64)
		return ok
	case Uint8:
		_, ok := v.(val.Uint8)
		return ok
	case Uint16:
		_, ok := v.(val.Uint16)
		return ok
	case Uint32:
		_, ok := v.(val.Uint32)
		return ok
	case Uint64:
		_, ok := v.(val.Uint64)
		return ok
	case List:
		l, ok := v.(val.List)
		if !ok {
			return false
		}
		for _, w := range l {
			if !Conforms(t.Elements, w) {
				return false
			}
		}
		return true
	case Tuple:
		w, ok := v.(val.Tuple)
		if !ok || len(w) != len(t) {
			return false
		}
		for i := range t {
			if !Conforms(t[i], w[i]) {
				return false
			}
		}
		return true
	case Struct:
		s, ok := v.(val.Struct)
		if !ok || s.Len() != t.Len() {
			return false
		}
		conforms := true
		t.ForEach(func(k string, u Type) bool {
			w, ok := s.Get(k)
			conforms = ok && Conforms(u, w)
			return conforms
		})
		return conforms
	case Option:
		o, ok := v.(val.Option)
		if !ok {
			return false
		}
		return !o.Present || Conforms(t.Elements, o.Value)
	case Map:
		m, ok := v.(val.Map)
		if !ok {
			return false
		}
		conforms := true
		m.ForEach(func(k, w val.Value) bool {
			conforms = Conforms(t.Key, k) && Conforms(t.Value, w)
			return conforms
		})
		return conforms
	case DefaultMap:
		m, ok := v.(val.DefaultMap)
		if !ok {
			return false
		}
		if !Conforms(t.Value, m.Default()) {
			return false
		}
		for _, e := range m.History() {
			if !Conforms(t.Key, e.Key) || !Conforms(t.Value, e.Value) {
				return false
			}
		}
		return true
	}
	panic(fmt.Sprintf(`unhandled type: %T`, t))
}

// TypeFromValue derives the Type of a concrete value. Empty composites
// cannot determine their element types, so callers that construct empty
// list/map literals must supply the intended Type explicitly instead.
func TypeFromValue(v val.Value) (Type, bool) {
	switch v := v.(type) {
	case val.Bool:
		return Bool{}, true
	case val.Char:
		return Char{}, true
	case val.String:
		return String{}, true
	case val.Int:
		return Int{}, true
	case val.Int8:
		return Int8{}, true
	case val.Int16:
		return Int16{}, true
	case val.Int32:
		return Int32{}, true
	case val.Int64:
		return Int64{}, true
	case val.Uint8:
		return Uint8{}, true
	case val.Uint16:
		return Uint16{}, true
	case val.Uint32:
		return Uint32{}, true
	case val.Uint64:
		return Uint64{}, true
	case val.Tuple:
		ts := make(Tuple, len(v), len(v))
		for i, w := range v {
			t, ok := TypeFromValue(w)
			if !ok {
				return nil, false
			}
			ts[i] = t
		}
		return ts, true
	case val.List:
		if len(v) == 0 {
			return nil, false
		}
		t, ok := TypeFromValue(v[0])
		if !ok {
			return nil, false
		}
		return List{t}, true
	case val.Struct:
		fields := make(map[string]Type, v.Len())
		ok := true
		v.ForEach(func(k string, w val.Value) bool {
			t, o := TypeFromValue(w)
			ok = o
			fields[k] = t
			return ok
		})
		if !ok {
			return nil, false
		}
		return NewStruct(fields), true
	case val.Option:
		if !v.Present {
			return nil, false
		}
		t, ok := TypeFromValue(v.Value)
		if !ok {
			return nil, false
		}
		return Option{t}, true
	case val.DefaultMap:
		vt, ok := TypeFromValue(v.Default())
		if !ok {
			return nil, false
		}
		h := v.History()
		if len(h) == 0 {
			return nil, false
		}
		kt, ok := TypeFromValue(h[0].Key)
		if !ok {
			return nil, false
		}
		return DefaultMap{kt, vt}, true
	case val.Map:
		ks := v.Keys()
		if len(ks) == 0 {
			return nil, false
		}
		kt, ok := TypeFromValue(ks[0])
		if !ok {
			return nil, false
		}
		w, _ := v.Get(ks[0])
		vt, ok := TypeFromValue(w)
		if !ok {
			return nil, false
		}
		return Map{kt, vt}, true
	}
	return nil, false
}
