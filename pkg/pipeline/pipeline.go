// Package pipeline runs the complete resolve → analyze → graph flow with
// tree-level caching, so callers get a scored tree, a risk report, and a
// flattened graph from a single entry point.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/graph"
	"github.com/depscope/depscope/pkg/risk"
)

// Options configures a single pipeline run.
type Options struct {
	Package     string      // Root package name (required)
	MaxDepth    int         // Maximum resolution depth (default: deps.DefaultMaxDepth)
	Concurrency int         // Maximum in-flight registry requests
	Refresh     bool        // Bypass all caches
	Logger      *log.Logger // Progress logging (optional)
}

// ValidateAndSetDefaults checks required fields and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := errors.ValidatePackageName(o.Package); err != nil {
		return err
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = deps.DefaultMaxDepth
	}
	if o.Concurrency <= 0 {
		o.Concurrency = deps.DefaultConcurrency
	}
	return nil
}

// Stats records per-stage timings and tree size for one run.
type Stats struct {
	ResolveTime  time.Duration `json:"resolveTime"`
	AnalyzeTime  time.Duration `json:"analyzeTime"`
	GraphTime    time.Duration `json:"graphTime"`
	PackageCount int           `json:"packageCount"`
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	TreeHit bool `json:"treeHit"`
}

// Result is the output of a complete pipeline run.
type Result struct {
	RunID     string            `json:"runId"`
	Tree      *deps.PackageNode `json:"tree"`
	Report    *risk.Report      `json:"report"`
	Graph     *graph.Graph      `json:"graph"`
	Stats     Stats             `json:"stats"`
	CacheInfo CacheInfo         `json:"cacheInfo"`
}
