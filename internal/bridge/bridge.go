package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"product-sync/internal/correspondence"
	"product-sync/internal/diagnostic"
	"product-sync/internal/mapping"
	"product-sync/internal/metrics"
	"product-sync/internal/model"
	"product-sync/internal/persistence"
	"product-sync/internal/product"
	"product-sync/internal/registry"
	"product-sync/internal/rule"
	"product-sync/internal/valueset"
)

var (
	// ErrBusy is returned when a run is started while another one is active.
	ErrBusy = errors.New("synchronization already running")
	// ErrNotOpen is returned when no configuration has been opened.
	ErrNotOpen = errors.New("no mapping configuration open")
	// ErrNoConnector is returned when a run needs the CAD connector and the
	// facade has none.
	ErrNoConnector = errors.New("no CAD connector")
	// ErrNoIteration is returned when a run gets no target iteration.
	ErrNoIteration = errors.New("no target iteration")
)

// Options are the session settings of a facade.
type Options struct {
	Bindings map[registry.Kind]registry.Binding
	// Domain, Option and State are short names; empty means none.
	Domain string
	Option string
	State  string
	// PruneOrphans removes orphaned correspondences during Pull.
	PruneOrphans bool
}

// Facade runs the mapping rules against one mapping configuration.
type Facade struct {
	backend   persistence.Backend
	connector product.Connector
	logger    *zap.Logger
	opts      Options

	// mu is held for the whole of a run.
	mu        sync.Mutex
	store     *correspondence.Store
	persisted bool
	recorder  *metrics.Recorder
	diags     *diagnostic.Diagnostics
}

// New creates a facade. connector may be nil when only Push is used with
// explicit trees.
func New(backend persistence.Backend, connector product.Connector, logger *zap.Logger, opts Options) *Facade {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Facade{
		backend:   backend,
		connector: connector,
		logger:    logger.Named("bridge"),
		opts:      opts,
		diags:     &diagnostic.Diagnostics{},
	}
}

// Open loads the configuration with the given name, or starts a new one
// when the backend has none.
func (f *Facade) Open(ctx context.Context, name string) error {
	if !f.mu.TryLock() {
		return ErrBusy
	}
	defer f.mu.Unlock()

	config, err := f.backend.FindByName(ctx, name)

	switch {
	case errors.Is(err, persistence.ErrNotFound):
		config = mapping.NewConfiguration(name)
		f.persisted = false

		f.logger.Info("new mapping configuration", zap.String("configuration", name), zap.Stringer("id", config.ID))
	case err != nil:
		return fmt.Errorf("failed to open configuration %s: %w", name, err)
	default:
		f.persisted = true

		f.logger.Info("mapping configuration loaded",
			zap.String("configuration", name),
			zap.Int("correspondences", len(config.Correspondences)))
	}

	f.store = correspondence.NewStore(f.logger, config, f.backend)
	f.recorder = metrics.NewRecorder(name)
	f.recorder.SetCorrespondences(f.store.Len())

	return nil
}

// Store returns the correspondence store of the open configuration.
func (f *Facade) Store() *correspondence.Store {
	return f.store
}

// Diagnostics returns the findings of the last run.
func (f *Facade) Diagnostics() *diagnostic.Diagnostics {
	return f.diags
}

// Push maps root onto it and persists the correspondences. A nil root is
// read from the connector.
func (f *Facade) Push(ctx context.Context, root *product.Node, it *model.Iteration) ([]rule.MappedElement, error) {
	var mapped []rule.MappedElement

	err := f.run(ctx, rule.DirectionPush, it, func(cfg rule.Config) error {
		if root == nil {
			tree, err := f.readTree(ctx)
			if err != nil {
				return err
			}

			root = tree
		}

		r := rule.NewSourceToTarget(cfg)

		result, err := r.Map(ctx, root)
		f.diags.Merge(*r.Diagnostics())
		mapped = result

		return err
	})
	if err != nil {
		return nil, err
	}

	return mapped, nil
}

// Pull plans the requested elements against tree, materializes them
// through the connector and persists the correspondences. A nil tree is
// read from the connector.
func (f *Facade) Pull(ctx context.Context, requests []rule.Request, tree *product.Node, it *model.Iteration) (*rule.Result, error) {
	if f.connector == nil {
		return nil, ErrNoConnector
	}

	var result *rule.Result

	err := f.run(ctx, rule.DirectionPull, it, func(cfg rule.Config) error {
		if tree == nil {
			read, err := f.readTree(ctx)
			if err != nil {
				return err
			}

			tree = read
		}

		r := rule.NewTargetToSource(cfg, f.opts.PruneOrphans)

		res, err := r.Map(ctx, requests, tree)
		f.diags.Merge(*r.Diagnostics())

		if err != nil {
			return err
		}

		if err := f.connector.Materialize(ctx, res.Placeholders); err != nil {
			return fmt.Errorf("failed to materialize %d placeholders: %w", len(res.Placeholders), err)
		}

		result = res

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Check reports problems of the open configuration and of the parameter
// type bindings against it.
func (f *Facade) Check(it *model.Iteration) (*diagnostic.Diagnostics, error) {
	if !f.mu.TryLock() {
		return nil, ErrBusy
	}
	defer f.mu.Unlock()

	if f.store == nil {
		return nil, ErrNotOpen
	}

	res := mapping.Validate(f.store.Configuration())

	for _, c := range f.store.Invalid() {
		res.AddWarning(diagnostic.CodeInvalidRecord,
			fmt.Sprintf("record %s has no usable direction", c.RecordID), c.External.Token(), "")
	}

	if it != nil {
		res.Merge(*registry.New(it, f.opts.Bindings).Check())
	}

	return res, nil
}

// run holds the lock, maps with fn and commits. On failure the store is
// reset to the persisted configuration.
func (f *Facade) run(ctx context.Context, direction string, it *model.Iteration, fn func(rule.Config) error) error {
	if !f.mu.TryLock() {
		return ErrBusy
	}
	defer f.mu.Unlock()

	if f.store == nil {
		return ErrNotOpen
	}

	if it == nil {
		return ErrNoIteration
	}

	name := f.store.Configuration().Name
	recorder := f.recorder
	timer := metrics.NewTimer()
	f.diags = &diagnostic.Diagnostics{}

	err := fn(f.ruleConfig(it))
	if err == nil {
		err = f.commit(ctx)
	}

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailure

		f.discard(context.WithoutCancel(ctx))
	}

	recorder.RecordRun(direction, status, timer.Duration())

	if f.store != nil {
		recorder.SetCorrespondences(f.store.Len())
	}

	if err != nil {
		f.logger.Error("synchronization failed",
			zap.String("configuration", name),
			zap.String("direction", direction),
			zap.Error(err))

		return fmt.Errorf("%s %s: %w", direction, name, err)
	}

	f.logger.Info("synchronization done",
		zap.String("direction", direction),
		zap.Int("correspondences", f.store.Len()),
		zap.Int("warnings", len(f.diags.Warnings)),
		zap.Duration("duration", timer.Duration()))

	return nil
}

func (f *Facade) ruleConfig(it *model.Iteration) rule.Config {
	cfg := rule.Config{
		Iteration: it,
		Store:     f.store,
		Registry:  registry.New(it, f.opts.Bindings),
		Logger:    f.logger,
		Recorder:  f.recorder,
	}

	if f.opts.Domain != "" {
		if d, ok := it.Domain(f.opts.Domain); ok {
			cfg.Domain = d
		} else {
			f.diags.AddWarning(diagnostic.CodeNoActiveSelection, "unknown domain "+f.opts.Domain, "", "")
		}
	}

	var sel valueset.Selection

	if f.opts.Option != "" {
		if o, ok := it.Option(f.opts.Option); ok {
			sel.Option = o
		} else {
			f.diags.AddWarning(diagnostic.CodeNoActiveSelection, "unknown option "+f.opts.Option, "", "")
		}
	}

	if f.opts.State != "" {
		if s, ok := it.State(f.opts.State); ok {
			sel.State = s
		} else {
			f.diags.AddWarning(diagnostic.CodeNoActiveSelection, "unknown state "+f.opts.State, "", "")
		}
	}

	cfg.Selection = sel

	return cfg
}

func (f *Facade) readTree(ctx context.Context) (*product.Node, error) {
	if f.connector == nil {
		return nil, ErrNoConnector
	}

	tree, err := f.connector.ReadTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read product tree: %w", err)
	}

	return tree, nil
}

// commit persists the store in one transaction and refreshes it.
func (f *Facade) commit(ctx context.Context) error {
	tx, err := f.backend.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := f.store.Persist(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			f.logger.Warn("rollback failed", zap.Error(rbErr))
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	f.persisted = true

	return f.store.Refresh(ctx)
}

// discard drops the changes of a failed run from the store. A persisted
// configuration that cannot be reloaded closes the facade.
func (f *Facade) discard(ctx context.Context) {
	config := f.store.Configuration()

	if f.persisted {
		err := f.store.Refresh(ctx)
		if err != nil {
			f.logger.Error("failed to reload configuration after a failed run, reopen it", zap.Error(err))
			f.store = nil
		}

		return
	}

	fresh := mapping.NewConfiguration(config.Name)
	fresh.ID = config.ID

	f.store = correspondence.NewStore(f.logger, fresh, f.backend)
}
