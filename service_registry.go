package main

import (
	"context"
	"fmt"
	"sync"
)

// Service is the lifecycle interface every service implements.
type Service interface {
	// Name returns the service name, used in logs and error messages.
	Name() string
	// Initialize initializes the service after all dependencies are wired.
	Initialize(ctx context.Context) error
	// Shutdown releases the service's resources.
	Shutdown() error
}

// serviceEntry holds internal service metadata.
type serviceEntry struct {
	service  Service
	name     string
	critical bool // a critical service failing Initialize blocks startup
}

// ServiceRegistry manages all service instances centrally.
type ServiceRegistry struct {
	ctx      context.Context
	logger   func(string)
	services []serviceEntry     // in registration order
	byName   map[string]Service // indexed by name
	mu       sync.RWMutex
}

// NewServiceRegistry creates a new service registry.
func NewServiceRegistry(ctx context.Context, logger func(string)) *ServiceRegistry {
	return &ServiceRegistry{
		ctx:      ctx,
		logger:   logger,
		services: make([]serviceEntry, 0),
		byName:   make(map[string]Service),
	}
}

// Register registers a non-critical service. Duplicate names are an error.
func (r *ServiceRegistry) Register(svc Service) error {
	return r.register(svc, false)
}

// RegisterCritical registers a critical service. A critical service failing
// to initialize blocks application startup.
func (r *ServiceRegistry) RegisterCritical(svc Service) error {
	return r.register(svc, true)
}

func (r *ServiceRegistry) register(svc Service, critical bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := svc.Name()
	if _, exists := r.byName[name]; exists {
		return WrapError("ServiceRegistry", "Register", fmt.Errorf("service %q already registered", name))
	}

	r.services = append(r.services, serviceEntry{
		service:  svc,
		name:     name,
		critical: critical,
	})
	r.byName[name] = svc
	return nil
}

// Get returns a registered service by name, or nil.
func (r *ServiceRegistry) Get(name string) Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// InitializeAll initializes services in registration order. A failing
// critical service aborts; a failing non-critical service is logged and
// skipped.
func (r *ServiceRegistry) InitializeAll() error {
	r.mu.RLock()
	entries := make([]serviceEntry, len(r.services))
	copy(entries, r.services)
	r.mu.RUnlock()

	for _, e := range entries {
		if err := e.service.Initialize(r.ctx); err != nil {
			if e.critical {
				return WrapError("ServiceRegistry", "InitializeAll",
					fmt.Errorf("critical service %q failed to initialize: %w", e.name, err))
			}
			r.log(fmt.Sprintf("[REGISTRY] Non-critical service %q failed to initialize: %v", e.name, err))
			continue
		}
		r.log(fmt.Sprintf("[REGISTRY] Service %q initialized", e.name))
	}
	return nil
}

// ShutdownAll shuts services down in reverse registration order, collecting
// errors instead of stopping at the first one.
func (r *ServiceRegistry) ShutdownAll() []error {
	r.mu.RLock()
	entries := make([]serviceEntry, len(r.services))
	copy(entries, r.services)
	r.mu.RUnlock()

	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		if err := entries[i].service.Shutdown(); err != nil {
			errs = append(errs, WrapError("ServiceRegistry", "ShutdownAll",
				fmt.Errorf("service %q: %w", entries[i].name, err)))
		}
	}
	return errs
}

func (r *ServiceRegistry) log(msg string) {
	if r.logger != nil {
		r.logger(msg)
	}
}
