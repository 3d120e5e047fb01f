// Package risk annotates a resolved dependency tree with supply-chain risk
// scores. Each node's 0-100 score is a weighted sum of seven sub-scores,
// every one a pure function of a primitive input so the business rules are
// individually testable.
package risk

import (
	"math"
	"strings"
	"time"

	"github.com/depscope/depscope/pkg/deps"
)

// Factor weights. They sum to 1.0; the table is a pinned business rule,
// not a tunable.
const (
	WeightPublishAge  = 0.25
	WeightMaintainers = 0.20
	WeightDepth       = 0.15
	WeightDownloads   = 0.15
	WeightSize        = 0.10
	WeightDeprecated  = 0.10
	WeightLicense     = 0.05
)

// month approximates one calendar month for publish-age bucketing.
const month = 30 * 24 * time.Hour

// Level is the categorical risk band derived from a score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// LevelFor maps a 0-100 score onto its band: 0-25 low, 26-50 medium,
// 51-75 high, 76-100 critical.
func LevelFor(score int) Level {
	switch {
	case score <= 25:
		return LevelLow
	case score <= 50:
		return LevelMedium
	case score <= 75:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// ScorePublishAge scores how stale a package's latest release is.
// A nil publish time (registry gave no date) scores 60.
func ScorePublishAge(lastPublish *time.Time, now time.Time) int {
	if lastPublish == nil {
		return 60
	}
	age := now.Sub(*lastPublish)
	switch {
	case age < 6*month:
		return 0
	case age < 12*month:
		return 20
	case age < 24*month:
		return 50
	default:
		return 80
	}
}

// ScoreMaintainers scores the bus factor. Zero maintainers reported by
// the registry is treated like a single maintainer.
func ScoreMaintainers(count int) int {
	switch {
	case count <= 1:
		return 80
	case count == 2:
		return 50
	case count <= 5:
		return 20
	default:
		return 0
	}
}

// ScoreDepth scores distance from the root: min(depth*12, 100).
func ScoreDepth(depth int) int {
	return min(depth*12, 100)
}

// ScoreDownloads scores popularity by weekly download count.
func ScoreDownloads(weekly int) int {
	switch {
	case weekly < 1_000:
		return 80
	case weekly < 10_000:
		return 50
	case weekly < 100_000:
		return 20
	default:
		return 0
	}
}

// ScoreSize scores the unpacked tarball size in bytes.
func ScoreSize(bytes int64) int {
	switch {
	case bytes < 100*1024:
		return 0
	case bytes < 500*1024:
		return 20
	case bytes < 1024*1024:
		return 50
	default:
		return 80
	}
}

// ScoreDeprecated scores the deprecation flag.
func ScoreDeprecated(deprecated bool) int {
	if deprecated {
		return 100
	}
	return 0
}

// ScoreLicense scores license risk: permissive licenses are clean,
// copyleft carries integration risk, anything missing or nonstandard is
// treated as an unknown quantity.
func ScoreLicense(license string) int {
	l := strings.ToUpper(strings.TrimSpace(license))
	if l == "" || l == deps.UnknownLicense {
		return 80
	}
	if strings.Contains(l, "GPL") { // covers GPL, AGPL, LGPL
		return 50
	}
	for _, permissive := range []string{"MIT", "APACHE", "BSD", "ISC"} {
		if strings.Contains(l, permissive) {
			return 0
		}
	}
	return 80
}

// Subscores holds the seven factor scores for one package.
type Subscores struct {
	PublishAge  int
	Maintainers int
	Depth       int
	Downloads   int
	Size        int
	Deprecated  int
	License     int
}

// Combine collapses the sub-scores into the final weighted score,
// rounded and clamped to [0, 100].
func Combine(s Subscores) int {
	weighted := WeightPublishAge*float64(s.PublishAge) +
		WeightMaintainers*float64(s.Maintainers) +
		WeightDepth*float64(s.Depth) +
		WeightDownloads*float64(s.Downloads) +
		WeightSize*float64(s.Size) +
		WeightDeprecated*float64(s.Deprecated) +
		WeightLicense*float64(s.License)
	score := int(math.Round(weighted))
	return min(max(score, 0), 100)
}

// ScoreNode computes the sub-scores for one tree node at the given
// reference time.
func ScoreNode(n *deps.PackageNode, now time.Time) Subscores {
	return Subscores{
		PublishAge:  ScorePublishAge(n.Metadata.LastPublish, now),
		Maintainers: ScoreMaintainers(n.Metadata.Maintainers),
		Depth:       ScoreDepth(n.Depth),
		Downloads:   ScoreDownloads(n.Downloads),
		Size:        ScoreSize(n.Metadata.UnpackedSize),
		Deprecated:  ScoreDeprecated(n.Metadata.Deprecated),
		License:     ScoreLicense(n.Metadata.License),
	}
}
