// Package container is a small constructor-injection container used to wire
// the command's components (config, logger, registry, oracle, runner).
package container

import (
	"fmt"
	"reflect"
	"sync"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Container maps a produced type to the constructor that builds it.
type Container struct {
	mu        sync.RWMutex
	prov      map[reflect.Type]provider
	instances map[reflect.Type]reflect.Value
}

type provider struct {
	fn        reflect.Value
	singleton bool
}

func New() *Container {
	return &Container{prov: make(map[reflect.Type]provider), instances: make(map[reflect.Type]reflect.Value)}
}

// Provide registers constructor for its first return type. The constructor's
// parameters are resolved from the container; it returns T or (T, error).
func (c *Container) Provide(constructor interface{}, singleton bool) error {
	v := reflect.ValueOf(constructor)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("container: constructor must be a function")
	}
	ft := v.Type()
	if ft.NumOut() == 0 || ft.NumOut() > 2 {
		return fmt.Errorf("container: constructor must return (T) or (T, error)")
	}
	if ft.NumOut() == 2 && ft.Out(1) != errorType {
		return fmt.Errorf("container: second return value must be error")
	}
	outType := ft.Out(0)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.prov[outType]; exists {
		return fmt.Errorf("container: provider already exists for %v", outType)
	}
	c.prov[outType] = provider{fn: v, singleton: singleton}
	return nil
}

// Supply registers an already built value as a singleton.
func (c *Container) Supply(value interface{}) error {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return fmt.Errorf("container: cannot supply untyped nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.instances[v.Type()]; exists {
		return fmt.Errorf("container: value already supplied for %v", v.Type())
	}
	c.instances[v.Type()] = v
	return nil
}

// Resolve fills target, a non-nil pointer, with an instance of its element type.
//
//	var reg *similarity.Registry
//	err := c.Resolve(&reg)
func (c *Container) Resolve(target interface{}) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("container: target must be a non-nil pointer")
	}
	val, err := c.get(ptr.Elem().Type(), make(map[reflect.Type]bool))
	if err != nil {
		return err
	}
	ptr.Elem().Set(val)
	return nil
}

// Invoke calls fn with its parameters resolved from the container. A non-nil
// trailing error result is returned.
func (c *Container) Invoke(fn interface{}) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("container: Invoke requires a function")
	}
	ft := v.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		val, err := c.get(ft.In(i), make(map[reflect.Type]bool))
		if err != nil {
			return err
		}
		args[i] = val
	}
	outs := v.Call(args)
	if n := len(outs); n > 0 && ft.Out(n-1) == errorType && !outs[n-1].IsNil() {
		return outs[n-1].Interface().(error)
	}
	return nil
}

// lookup finds the provider for t, falling back to any provider whose
// product implements t when t is an interface.
func (c *Container) lookup(t reflect.Type) (reflect.Value, provider, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.instances[t]; ok {
		return v, provider{}, true
	}
	if p, ok := c.prov[t]; ok {
		return reflect.Value{}, p, true
	}
	if t.Kind() == reflect.Interface {
		for pt, p := range c.prov {
			if pt.Implements(t) {
				return reflect.Value{}, p, true
			}
		}
	}
	return reflect.Value{}, provider{}, false
}

func (c *Container) get(t reflect.Type, resolving map[reflect.Type]bool) (reflect.Value, error) {
	inst, prov, ok := c.lookup(t)
	if !ok {
		return reflect.Value{}, fmt.Errorf("container: no provider for %v", t)
	}
	if inst.IsValid() {
		return inst, nil
	}

	if resolving[t] {
		return reflect.Value{}, fmt.Errorf("container: cyclic dependency for %v", t)
	}
	resolving[t] = true
	defer delete(resolving, t)

	ft := prov.fn.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		dep, err := c.get(ft.In(i), resolving)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("container: building %v: %w", t, err)
		}
		args[i] = dep
	}
	outs := prov.fn.Call(args)
	if len(outs) == 2 && !outs[1].IsNil() {
		return reflect.Value{}, outs[1].Interface().(error)
	}
	res := outs[0]

	if prov.singleton {
		c.mu.Lock()
		if existing, ok := c.instances[t]; ok {
			res = existing
		} else {
			c.instances[t] = res
		}
		c.mu.Unlock()
	}
	return res, nil
}
