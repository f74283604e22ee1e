package policy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/flapsim/internal/config"
)

// Factory creates a policy for the given configuration.
type Factory func(cfg config.FlappyConfig) (Policy, error)

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

// Register adds a policy factory to the registry.
// Typically called from an init() function.
// Panics if a policy with the same name is already registered.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("policy: %q already registered", name))
	}
	factories[name] = f
}

// List returns the names of all registered policies, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create instantiates a policy by name.
// Returns an error if the name is not registered.
func Create(name string, cfg config.FlappyConfig) (Policy, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("policy: unknown policy %q", name)
	}
	return f(cfg)
}

// Exists checks if a policy with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}
