package deps

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/depscope/depscope/pkg/errors"
)

// Resolver crawls a registry, expanding a package into its dependency tree.
// A Resolver is safe for concurrent use; the in-flight request bound is
// shared across all Resolve calls on the same instance.
type Resolver struct {
	fetcher Fetcher
	opts    Options
	sem     *semaphore.Weighted
}

// NewResolver creates a Resolver that crawls dependencies using the given
// Fetcher, bounded by opts.Concurrency simultaneous registry requests.
func NewResolver(fetcher Fetcher, opts Options) *Resolver {
	opts = opts.WithDefaults()
	return &Resolver{
		fetcher: fetcher,
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
	}
}

// Resolve expands name into its full dependency tree.
//
// Resolution failures never abort the crawl: a node whose fetch fails (not
// found, network, malformed response) carries Error and an empty dependency
// list while its siblings resolve normally. A root-level failure is returned
// the same way, as a single errored node. The only error return is for an
// invalid package name.
func (r *Resolver) Resolve(ctx context.Context, name string) (*PackageNode, error) {
	name = strings.TrimSpace(name)
	if err := errors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	root := r.resolve(ctx, name, 0, nil)
	r.opts.Logger.Info("resolved dependency tree",
		"package", name, "nodes", root.Count(), "maxDepth", r.opts.MaxDepth)
	return root, nil
}

// resolve fetches one package and fans out over its dependencies. path
// holds the names of all ancestors plus the current node and is never
// mutated once children start; each level extends its own copy.
func (r *Resolver) resolve(ctx context.Context, name string, depth int, path map[string]bool) *PackageNode {
	node := newNode(name, depth)

	pkg, err := r.fetch(ctx, name)
	if err != nil {
		node.Error = err.Error()
		r.opts.Logger.Warn("fetch failed", "package", name, "depth", depth, "err", err)
		return node
	}

	node.Version = pkg.Version
	node.Downloads = pkg.Downloads
	node.Metadata = metadataFrom(pkg)

	if len(pkg.Dependencies) == 0 {
		return node
	}

	childPath := make(map[string]bool, len(path)+1)
	for k := range path {
		childPath[k] = true
	}
	childPath[name] = true

	children := make([]*PackageNode, len(pkg.Dependencies))
	var wg sync.WaitGroup
	for i, dep := range pkg.Dependencies {
		switch {
		case childPath[dep]:
			// Cycle along this path: keep the occurrence, stop expanding.
			children[i] = newNode(dep, depth+1)
		case depth+1 > r.opts.MaxDepth:
			// Depth cap: the dependency stays visible as an unexpanded leaf.
			children[i] = newNode(dep, depth+1)
		default:
			wg.Add(1)
			go func(i int, dep string) {
				defer wg.Done()
				children[i] = r.resolve(ctx, dep, depth+1, childPath)
			}(i, dep)
		}
	}
	wg.Wait()

	node.Dependencies = children
	return node
}

// fetch performs one registry request under the concurrency bound.
func (r *Resolver) fetch(ctx context.Context, name string) (*Package, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", name)
	}
	defer r.sem.Release(1)
	return r.fetcher.Fetch(ctx, name, r.opts.Refresh)
}

func newNode(name string, depth int) *PackageNode {
	return &PackageNode{
		Name:         name,
		Depth:        depth,
		Metadata:     Metadata{License: UnknownLicense},
		Dependencies: []*PackageNode{},
	}
}

func metadataFrom(pkg *Package) Metadata {
	license := pkg.License
	if license == "" {
		license = UnknownLicense
	}
	return Metadata{
		Description:     pkg.Description,
		License:         license,
		Maintainers:     len(pkg.Maintainers),
		MaintainerNames: pkg.Maintainers,
		LastPublish:     pkg.LastPublish,
		UnpackedSize:    pkg.UnpackedSize,
		Deprecated:      pkg.Deprecated,
		Homepage:        pkg.Homepage,
		Repository:      pkg.Repository,
	}
}
