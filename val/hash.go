// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package val

import (
	"fmt"
	"hash"
	"hash/fnv"
	"sort"
)

func Hash(v Value, h hash.Hash64) hash.Hash64 {
	if h == nil {
		h = fnv.New64()
	}
	switch v := v.(type) {
	case Tuple:
		h.Write([]byte(`tuple`))
		for _, w := range v {
			h = Hash(w, h)
		}
		return h
	case List:
		h.Write([]byte(`list`))
		for _, w := range v {
			h = Hash(w, h)
		}
		return h
	case Struct:
		h.Write([]byte(`struct`))
		v.ForEach(func(k string, v Value) bool {
			h.Write([]byte(k))
			h = Hash(v, h)
			return true
		})
		return h
	case Map:
		h.Write([]byte(`map`))
		hs := make([]uint64, 0, v.Len())
		for k := range v.es {
			hs = append(hs, k)
		}
		sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
		for _, k := range hs {
			e := v.es[k]
			h = Hash(e.Key, h)
			h = Hash(e.Value, h)
		}
		return h
	case DefaultMap:
		// hashed extensionally: equal maps must hash equally regardless
		// of override order
		h.Write([]byte(`defaultMap`))
		h = Hash(v.dflt, h)
		os := v.Overrides()
		sort.Slice(os, func(i, j int) bool {
			return Hash(os[i].Key, nil).Sum64() < Hash(os[j].Key, nil).Sum64()
		})
		for _, e := range os {
			h = Hash(e.Key, h)
			h = Hash(e.Value, h)
		}
		return h
	case Option:
		h.Write([]byte(`option`))
		if v.Present {
			h.Write([]byte{1})
			h = Hash(v.Value, h)
		} else {
			h.Write([]byte{0})
		}
		return h
	case Bool:
		h.Write([]byte(`bool`))
		if v {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		return h
	case String:
		h.Write([]byte(`string`))
		h.Write([]byte(v))
		return h
	case Char:
		h.Write([]byte(`char`))
		h.Write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		return h
	case Int:
		h.Write([]byte(`int`))
		h.Write(v.Int.Bytes())
		if v.Int.Sign() < 0 {
			h.Write([]byte{0xff})
		}
		return h

	case Int8:
		h.Write([]byte(`int8`))
		h.Write([]byte{byte(v)})
		return h

	case Int16:
		h.Write([]byte(`int16`))
		h.Write([]byte{byte(v >> 8), byte(v)})
		return h

	case Int32:
		h.Write([]byte(`int32`))
		h.Write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		return h

	case Int64:
		h.Write([]byte(`int64`))
		h.Write([]byte{byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32), byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		return h

	case Uint8:
		h.Write([]byte(`uint8`))
		h.Write([]byte{byte(v)})
		return h

	case Uint16:
		h.Write([]byte(`uint16`))
		h.Write([]byte{byte(v >> 8), byte(v)})
		return h

	case Uint32:
		h.Write([]byte(`uint32`))
		h.Write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		return h

	case Uint64:
		h.Write([]byte(`uint64`))
		h.Write([]byte{byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32), byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		return h

	}
	panic(fmt.Sprintf("unhandled type: %T", v))
}
