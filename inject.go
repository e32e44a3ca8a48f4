package apiclient

import "reflect"

// ResponseInjector is implemented by decoded types that need the response
// they were decoded from, for example to resolve relative links or read
// pagination headers.
type ResponseInjector interface {
	InjectResponse(cr ConnectorResponse)
}

var injectorType = reflect.TypeFor[ResponseInjector]()

// Injectables carries the values handed to ResponseInjector implementations
// during a decode.
type Injectables struct {
	Response ConnectorResponse
}

// Inject walks v and calls InjectResponse on every value that implements
// ResponseInjector. Pointer-receiver implementations are reached through
// addressable values. Each pointer, map and slice is visited once, so
// self-referencing values terminate.
func (in Injectables) Inject(v any) {
	if in.Response == nil || v == nil {
		return
	}
	w := injectWalker{cr: in.Response, seen: make(map[visit]struct{})}
	w.walk(reflect.ValueOf(v))
}

type injectWalker struct {
	cr   ConnectorResponse
	seen map[visit]struct{}
}

// visit identifies a pointer, map or slice already walked. Slices are keyed
// by length too since subslices share their base address.
type visit struct {
	ptr  uintptr
	kind reflect.Kind
	len  int
}

// enter records v and reports whether it was new.
func (w *injectWalker) enter(v reflect.Value, n int) bool {
	key := visit{ptr: v.Pointer(), kind: v.Kind(), len: n}
	if _, ok := w.seen[key]; ok {
		return false
	}
	w.seen[key] = struct{}{}
	return true
}

func (w *injectWalker) walk(v reflect.Value) {
	if !v.IsValid() {
		return
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return
		}
		if !w.enter(v, 0) {
			return
		}
		w.walk(v.Elem())
		return
	case reflect.Interface:
		if v.IsNil() {
			return
		}
		w.walk(v.Elem())
		return
	case reflect.Map:
		if !v.IsNil() && !w.enter(v, 0) {
			return
		}
	case reflect.Slice:
		if v.Len() > 0 && !w.enter(v, v.Len()) {
			return
		}
	}

	w.call(v)

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			if !t.Field(i).IsExported() {
				continue
			}
			w.walk(v.Field(i))
		}
	case reflect.Slice, reflect.Array:
		if !mayHoldInjector(v.Type().Elem()) {
			return
		}
		for i := range v.Len() {
			w.walk(v.Index(i))
		}
	case reflect.Map:
		if v.IsNil() || !mayHoldInjector(v.Type().Elem()) {
			return
		}
		iter := v.MapRange()
		for iter.Next() {
			w.walk(iter.Value())
		}
	}
}

func (w *injectWalker) call(v reflect.Value) {
	if v.CanAddr() {
		if pv := v.Addr(); pv.Type().Implements(injectorType) && pv.CanInterface() {
			pv.Interface().(ResponseInjector).InjectResponse(w.cr) //nolint:forcetypeassert // checked above
			return
		}
	}
	if v.Type().Implements(injectorType) && v.CanInterface() {
		v.Interface().(ResponseInjector).InjectResponse(w.cr) //nolint:forcetypeassert // checked above
	}
}

// mayHoldInjector reports whether values of t can contain a ResponseInjector.
func mayHoldInjector(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Struct, reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return t.Implements(injectorType) || reflect.PointerTo(t).Implements(injectorType)
}
