package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/accord/internal/access"
	"github.com/roach88/accord/internal/audit"
	"github.com/roach88/accord/internal/config"
	"github.com/roach88/accord/internal/engine"
	"github.com/roach88/accord/internal/modifier"
	"github.com/roach88/accord/internal/policy"
	"github.com/roach88/accord/internal/store"
	"github.com/roach88/accord/internal/weight"
)

// runtime is the component graph described by the config.
type runtime struct {
	cfg      *config.Config
	store    *store.Store // nil without a database
	registry *access.Registry
	weigher  *weight.Engine
	engine   *engine.Engine
}

// openRuntime wires the components. dbPath overrides cfg.Database when set.
//
// Identities resolve from the policy file's table (or the built-in table
// when the policy file lists none), then from the database.
func openRuntime(ctx context.Context, cfg *config.Config, dbPath string) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	pol := access.DefaultPolicy()
	identities := access.DefaultIdentities()
	if cfg.Policy != "" {
		doc, err := policy.LoadFile(cfg.Policy)
		if err != nil {
			return nil, err
		}
		pol = doc.Policy
		if len(doc.Identities) > 0 {
			identities = doc.Identities
		}
		slog.Debug("policy loaded", "path", cfg.Policy, "identities", len(doc.Identities))
	}
	static, err := access.NewMemoryResolver(identities...)
	if err != nil {
		return nil, err
	}
	resolvers := access.ChainResolver{static}
	sinks := audit.Multi{audit.NewLogSink(slog.Default())}

	if dbPath == "" {
		dbPath = cfg.Database
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open database %s: %w", dbPath, err)
		}
		rt.store = st
		resolvers = append(resolvers, store.NewIdentityResolver(st))
		sinks = append(sinks, store.NewAuditSink(st, slog.Default()))
	}

	var source modifier.Source
	if cfg.Modifier.Store != "" {
		source = modifier.FileSource{Path: cfg.Modifier.Store}
	}
	integ, err := modifier.NewIntegrator(source, cfg.ModifierParams(), modifier.WithSink(sinks))
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.weigher, err = weight.NewEngine(cfg.WeightParams())
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.registry = access.NewRegistry(resolvers, pol, access.WithSink(sinks))

	opts := []engine.Option{
		engine.WithIntegrator(integ),
		engine.WithMinPublishWeight(cfg.Ledger.MinPublishWeight),
		engine.WithConcurrency(cfg.Concurrency),
	}
	if rt.store != nil {
		// Resume seq numbering after the last recorded submission.
		report, err := rt.store.VerifyLedger(ctx)
		if err != nil {
			rt.Close()
			return nil, err
		}
		opts = append(opts,
			engine.WithLedger(rt.store),
			engine.WithClock(engine.NewClockAt(report.LastSeq)),
		)
	}
	rt.engine, err = engine.New(rt.registry, rt.weigher, opts...)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// Close releases the database, if any.
func (rt *runtime) Close() {
	if rt.store == nil {
		return
	}
	if err := rt.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
