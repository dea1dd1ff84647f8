package dashboard

import (
	"context"
	"fmt"
	"sync"
)

// Loader fetches and renders one view.
type Loader func(ctx context.Context) error

// Dispatcher maps tab names to loaders. Activation always calls the loader;
// nothing is cached between activations.
type Dispatcher struct {
	mu      sync.RWMutex
	loaders map[View]Loader
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{loaders: make(map[View]Loader)}
}

// Register binds a loader to a view.
func (d *Dispatcher) Register(view View, loader Loader) error {
	if view == "" {
		return fmt.Errorf("dashboard: view name is required")
	}
	if loader == nil {
		return fmt.Errorf("dashboard: loader for %s is nil", view)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.loaders[view]; exists {
		return fmt.Errorf("dashboard: view %s already registered", view)
	}
	d.loaders[view] = loader
	return nil
}

// Resolve returns the view and loader for a target such as "#movements".
func (d *Dispatcher) Resolve(target string) (View, Loader, error) {
	view, ok := ParseView(target)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownView, target)
	}
	d.mu.RLock()
	loader, ok := d.loaders[view]
	d.mu.RUnlock()
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownView, target)
	}
	return view, loader, nil
}

// Activate resolves the target and runs its loader once.
func (d *Dispatcher) Activate(ctx context.Context, target string) (View, error) {
	view, loader, err := d.Resolve(target)
	if err != nil {
		return "", err
	}
	return view, loader(ctx)
}
