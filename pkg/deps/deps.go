// Package deps resolves a package's transitive dependency tree from a
// registry. The tree is deliberately not deduplicated: a package required
// on several import paths appears once per path, each occurrence with its
// own depth. Deduplication is the graph package's job.
package deps

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultMaxDepth    = 10 // Default maximum dependency depth
	DefaultConcurrency = 8  // Default simultaneous registry requests
)

// Options configures dependency resolution behavior.
type Options struct {
	MaxDepth    int         // Maximum depth to traverse (default: 10)
	Concurrency int         // Maximum in-flight registry requests (default: 8)
	Refresh     bool        // Bypass cache for fresh data
	Logger      *log.Logger // Progress/error logging (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return opts
}

// Fetcher retrieves package metadata from a registry.
type Fetcher interface {
	// Fetch retrieves package information by name. If refresh is true,
	// cached data is bypassed.
	Fetch(ctx context.Context, name string, refresh bool) (*Package, error)
}

// Package holds metadata fetched from a package registry. Fields that the
// registry omits carry their documented defaults: Downloads 0, License
// "UNKNOWN", no maintainers, nil LastPublish.
type Package struct {
	Name         string     // Package name
	Version      string     // Resolved (latest) version
	Dependencies []string   // Direct dependency names in registry-declared order
	Downloads    int        // Weekly download count
	Description  string     // Package summary/description
	License      string     // License identifier
	Maintainers  []string   // Maintainer usernames
	LastPublish  *time.Time // Publish time of the resolved version
	UnpackedSize int64      // Unpacked tarball size in bytes
	Deprecated   bool       // Whether the resolved version is deprecated
	Homepage     string     // Project homepage URL
	Repository   string     // Source repository URL
}

// UnknownLicense is the placeholder for packages without license data.
const UnknownLicense = "UNKNOWN"

// Metadata holds the descriptive fields of a resolved package.
type Metadata struct {
	Description     string     `json:"description"`
	License         string     `json:"license"`
	Maintainers     int        `json:"maintainers"`
	MaintainerNames []string   `json:"maintainerNames,omitempty"`
	LastPublish     *time.Time `json:"lastPublish"`
	UnpackedSize    int64      `json:"unpackedSize"`
	Deprecated      bool       `json:"deprecated"`
	Homepage        string     `json:"homepage,omitempty"`
	Repository      string     `json:"repository,omitempty"`
}

// PackageNode is one position in the resolved dependency tree. The same
// package name may appear at several positions; every node's Depth is its
// parent's Depth plus one, with the root at zero.
//
// RiskScore and RiskLevel are zero until the risk package annotates the
// tree in place.
type PackageNode struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Depth        int            `json:"depth"`
	Downloads    int            `json:"downloads"`
	Metadata     Metadata       `json:"metadata"`
	Dependencies []*PackageNode `json:"dependencies"`
	Error        string         `json:"error,omitempty"`
	RiskScore    int            `json:"riskScore"`
	RiskLevel    string         `json:"riskLevel,omitempty"`
}

// Failed reports whether resolution of this node failed.
func (n *PackageNode) Failed() bool { return n.Error != "" }

// Walk calls fn for this node and every node below it, depth-first,
// parents before children.
func (n *PackageNode) Walk(fn func(*PackageNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, dep := range n.Dependencies {
		dep.Walk(fn)
	}
}

// Count returns the number of tree positions, counting repeated packages
// once per occurrence.
func (n *PackageNode) Count() int {
	total := 0
	n.Walk(func(*PackageNode) { total++ })
	return total
}
