package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/depscope/depscope/pkg/cache"
	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/risk"
)

// Runner executes pipelines against one registry fetcher and cache.
//
// The Runner is stateless except for the cache, fetcher, and logger - it
// does not store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Fetcher deps.Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner with the given fetcher and cache.
// If c is nil, a NullCache is used (tree caching disabled).
func NewRunner(fetcher deps.Fetcher, c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:   c,
		Fetcher: fetcher,
		Logger:  logger,
	}
}

// Execute runs the complete resolve → analyze → graph pipeline.
//
// Registry failures on the root package abort the run; failures deeper in
// the tree are recorded on their nodes and the run completes normally.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}

	// Stage 1: Resolve
	resolveStart := time.Now()
	tree, treeHit, err := r.ResolveWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	if tree.Failed() {
		return nil, errors.New(errors.ErrCodeInvalidPackage, "resolve %s: %s", tree.Name, tree.Error)
	}
	result.Tree = tree
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.Stats.PackageCount = tree.Count()
	result.CacheInfo.TreeHit = treeHit

	r.Logger.Info("resolved dependency tree",
		"package", opts.Package,
		"packages", result.Stats.PackageCount,
		"cached", treeHit,
		"duration", result.Stats.ResolveTime)

	// Stage 2: Report. Trees come back from stage 1 already scored.
	analyzeStart := time.Now()
	result.Report = risk.GenerateRiskReport(tree)
	result.Stats.AnalyzeTime = time.Since(analyzeStart)

	r.Logger.Info("analyzed risk",
		"average", result.Report.AverageRisk,
		"duration", result.Stats.AnalyzeTime)

	// Stage 3: Graph
	graphStart := time.Now()
	result.Graph = graph.FromTree(tree)
	result.Stats.GraphTime = time.Since(graphStart)

	r.Logger.Info("built graph",
		"nodes", len(result.Graph.Nodes),
		"edges", len(result.Graph.Edges),
		"duration", result.Stats.GraphTime)

	return result, nil
}

// ResolveWithCacheInfo resolves and scores a dependency tree, reusing a
// cached tree when one exists for the same package and crawl bounds.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, opts Options) (*deps.PackageNode, bool, error) {
	cacheKey := cache.Key("tree", opts.Package, opts.MaxDepth)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var tree deps.PackageNode
			if err := json.Unmarshal(data, &tree); err == nil {
				return &tree, true, nil
			}
			// Undecodable entries are recomputed and overwritten.
		}
	}

	resolver := deps.NewResolver(r.Fetcher, deps.Options{
		MaxDepth:    opts.MaxDepth,
		Concurrency: opts.Concurrency,
		Refresh:     opts.Refresh,
		Logger:      opts.Logger,
	})
	tree, err := resolver.Resolve(ctx, opts.Package)
	if err != nil {
		return nil, false, err
	}
	risk.AnalyzeTree(tree)

	if !tree.Failed() {
		if data, err := json.Marshal(tree); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLTree)
		}
	}

	return tree, false, nil
}

// Resolve is a convenience wrapper that discards the cache hit info.
func (r *Runner) Resolve(ctx context.Context, opts Options) (*deps.PackageNode, error) {
	tree, _, err := r.ResolveWithCacheInfo(ctx, opts)
	return tree, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
