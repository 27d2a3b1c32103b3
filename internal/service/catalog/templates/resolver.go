// Package templates inlines template references found in chain element
// properties. Rewrite rules are strategies registered per element type.
package templates

import (
	"context"
	"log/slog"
	"sync"

	models "chaincatalog/internal/domain/models/catalog"
)

// TemplateLookup finds a template by id. The template repository satisfies it.
type TemplateLookup interface {
	GetByID(ctx context.Context, id string) (*models.Template, error)
}

// Replacer is one rewrite rule. ApplicableTo must turn false once Replace has
// run, which makes a second pass over the same element a no-op.
type Replacer interface {
	// ElementType is the element type the rule is registered under
	ElementType() string

	// ApplicableTo reports whether the element carries a reference this rule rewrites
	ApplicableTo(element *models.ChainElement) bool

	// Replace inlines every reference in place
	Replace(ctx context.Context, element *models.ChainElement) error
}

// Resolver routes elements to the replacers registered for their type.
// Safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	replacers map[string][]Replacer
	logger    *slog.Logger
}

// NewResolver creates an empty resolver
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{
		replacers: make(map[string][]Replacer),
		logger:    logger,
	}
}

// NewDefaultResolver creates a resolver with the built-in rules registered
func NewDefaultResolver(templates TemplateLookup, logger *slog.Logger) *Resolver {
	r := NewResolver(logger)
	r.Register(NewServiceCallResponseMappingReplacer(templates))
	return r
}

// Register adds a replacer under its element type. Replacers of one type run
// in registration order.
func (r *Resolver) Register(replacer Replacer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replacers[replacer.ElementType()] = append(r.replacers[replacer.ElementType()], replacer)
}

// Resolve applies every applicable replacer to the element
func (r *Resolver) Resolve(ctx context.Context, element *models.ChainElement) error {
	r.mu.RLock()
	candidates := r.replacers[element.Type]
	r.mu.RUnlock()

	for _, replacer := range candidates {
		if !replacer.ApplicableTo(element) {
			continue
		}
		if err := replacer.Replace(ctx, element); err != nil {
			return err
		}
		r.logger.Debug("template references inlined",
			"element_id", element.ID,
			"element_type", element.Type,
			"chain_id", element.ChainID,
		)
	}
	return nil
}

// ResolveAll resolves each element in order and stops at the first failure
func (r *Resolver) ResolveAll(ctx context.Context, elements []models.ChainElement) error {
	for i := range elements {
		if err := r.Resolve(ctx, &elements[i]); err != nil {
			return err
		}
	}
	return nil
}
