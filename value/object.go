package value

import "strings"

// Object is an insertion-ordered mapping from Value to *Pointer. Order is
// kept explicitly (a keys slice alongside the lookup map) because DreamBerd
// objects print and iterate in declaration order, and Go maps don't.
type Object struct {
	keys []Value
	vals map[Value]*Pointer
}

// NewObject returns an empty Object. The shared root "undefined" sentinel
// is one particular *Object built this way and never otherwise mutated
// directly — see state.NewRoot.
func NewObject() *Object {
	return &Object{vals: make(map[Value]*Pointer)}
}

func (o *Object) Len() int { return len(o.keys) }

// Get looks up key, returning (nil, false) if absent.
func (o *Object) Get(key Value) (*Pointer, bool) {
	p, ok := o.vals[key]
	return p, ok
}

// Set inserts or overwrites key -> ptr, appending to the key order the
// first time a key is written.
func (o *Object) Set(key Value, ptr *Pointer) {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = ptr
}

// Delete removes key, returning whether it was present.
func (o *Object) Delete(key Value) bool {
	if _, ok := o.vals[key]; !ok {
		return false
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the object's keys in insertion order.
func (o *Object) Keys() []Value {
	out := make([]Value, len(o.keys))
	copy(out, o.keys)
	return out
}

// ShallowClone copies the key order and backing map into a fresh Object.
// Entries keep the same *Pointer, so a child cell shared between the source
// and the clone still observes mutations made through either one; only
// top-level insert/delete are independent between the two.
func (o *Object) ShallowClone() *Object {
	clone := &Object{
		keys: make([]Value, len(o.keys)),
		vals: make(map[Value]*Pointer, len(o.vals)),
	}
	copy(clone.keys, o.keys)
	for k, v := range o.vals {
		clone.vals[k] = v
	}
	return clone
}

func (o *Object) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k.ToDisplayString())
		sb.WriteString(": ")
		if p, ok := o.vals[k]; ok {
			sb.WriteString(p.Peek().ToDisplayString())
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
