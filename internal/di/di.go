// Package di provides a minimal string-token dependency injection container.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry provides read access to registered services.
type ServiceRegistry interface {
	// Get returns the service registered under name, resolving lazy
	// factories on first access. Panics if the name is unknown.
	Get(name string) any
}

// Container extends ServiceRegistry with registration.
type Container interface {
	ServiceRegistry

	// Register stores an already-constructed service.
	Register(name string, svc any)

	// RegisterFactory stores a lazy constructor. The factory runs once,
	// on first Get, and the result is memoized.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		services:  make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

type container struct {
	mu        sync.Mutex
	services  map[string]any
	factories map[string]func(ServiceRegistry) any
}

func (c *container) Register(name string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = svc
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
}

func (c *container) Get(name string) any {
	c.mu.Lock()
	if svc, ok := c.services[name]; ok {
		c.mu.Unlock()
		return svc
	}
	factory, ok := c.factories[name]
	c.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("di: unknown service %q", name))
	}

	// Resolve outside the lock so factories can Get their own dependencies.
	svc := factory(c)

	c.mu.Lock()
	c.services[name] = svc
	c.mu.Unlock()

	return svc
}

// Token is a typed handle for a registered service.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// String returns the token name.
func (t Token[T]) String() string {
	return t.name
}

// RegisterToken registers a typed factory under the token's name.
func RegisterToken[T any](c Container, tok Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(tok.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed service. Panics if the registered service does
// not have the token's type.
func GetToken[T any](sr ServiceRegistry, tok Token[T]) T {
	svc, ok := sr.Get(tok.name).(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type", tok.name))
	}
	return svc
}
