// internal/seed/runner.go
package seed

import (
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kladdkaka/internal/schema"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
)

// markerKey lives in schema_meta, outside the collections, so it survives
// the defensive Clear and is readable before any seeding decision.
const markerKey = "seed_generation"

// Runner populates baseline data exactly once per data generation. Schema
// version bumps are a separate concern handled by the engine's additive
// upgrade; they never re-trigger seeding.
type Runner struct {
	engine     store.Engine
	generation string
}

func NewRunner(engine store.Engine, generation string) *Runner {
	return &Runner{engine: engine, generation: generation}
}

// Boot seeds the store if the persisted marker does not match the current
// generation. Returns whether seeding ran. Calling it again with the same
// generation is a no-op, so existing user data is never touched twice.
func (r *Runner) Boot(fx *Fixture) (bool, error) {
	current, err := r.engine.MetaGet(markerKey)
	if err != nil {
		return false, fmt.Errorf("failed to read seed marker: %w", err)
	}
	if current == r.generation {
		logger.Debug.Printf("seed generation %q already present, skipping", r.generation)
		return false, nil
	}

	logger.Info.Printf("seeding data generation %q (was %q)", r.generation, current)

	// Defensive reset: a mismatched marker means whatever is in the
	// collections belongs to another generation.
	for _, name := range schema.Names() {
		if err := r.engine.Clear(name); err != nil {
			return false, fmt.Errorf("failed to reset %s before seeding: %w", name, err)
		}
	}

	if err := fx.each(func(collection string, record any) error {
		doc, err := store.ToDocument(record)
		if err != nil {
			return err
		}
		if _, err := r.engine.Add(collection, doc); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return false, fmt.Errorf("failed to seed baseline data: %w", err)
	}

	if err := r.engine.MetaSet(markerKey, r.generation); err != nil {
		return false, fmt.Errorf("failed to persist seed marker: %w", err)
	}
	return true, nil
}
