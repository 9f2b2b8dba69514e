package enum

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	mutex    sync.RWMutex
	registry = map[reflect.Type]any{}
)

type enum[T comparable] struct {
	toEnum   map[string]T
	toString map[T]string
}

func get[T comparable]() (enum[T], bool) {
	var defaultT T
	e, ok := registry[reflect.TypeOf(defaultT)]
	if !ok {
		return enum[T]{}, false
	}

	return e.(enum[T]), true
}

// New registers value under name so that it can be parsed back by ToEnum and
// printed by ToString.
func New[T comparable](value T, name string) T {
	mutex.Lock()
	defer mutex.Unlock()

	e, ok := get[T]()
	if !ok {
		e = enum[T]{toEnum: make(map[string]T), toString: make(map[T]string)}
		registry[reflect.TypeOf(value)] = e
	}

	e.toEnum[name] = value
	e.toString[value] = name
	return value
}

func ToEnum[T comparable](name string) (T, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	var defaultT T
	e, ok := get[T]()
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	t, ok := e.toEnum[name]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", name, defaultT)
	}

	return t, nil
}

// ToString returns the registered name of value, or an empty string.
func ToString[T comparable](value T) string {
	mutex.RLock()
	defer mutex.RUnlock()

	e, ok := get[T]()
	if !ok {
		return ""
	}

	return e.toString[value]
}
