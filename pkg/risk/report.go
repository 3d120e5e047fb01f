package risk

import (
	"sort"
	"time"

	"github.com/depscope/depscope/pkg/deps"
)

// TopRiskLimit caps how many packages the report lists as top risks.
const TopRiskLimit = 10

// NodeSummary identifies one tree occurrence in a report.
type NodeSummary struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Depth     int    `json:"depth"`
	RiskScore int    `json:"riskScore"`
	RiskLevel string `json:"riskLevel"`
}

// Report aggregates risk across a whole resolved tree. Counts are over
// tree positions, not unique packages: a package imported on three paths
// contributes three times, mirroring how often it is actually pulled in.
type Report struct {
	Root          string        `json:"root"`
	TotalPackages int           `json:"totalPackages"`
	AverageRisk   float64       `json:"averageRisk"`
	Distribution  map[Level]int `json:"distribution"`
	TopRisks      []NodeSummary `json:"topRisks"`
	Deprecated    []NodeSummary `json:"deprecated"`
	GeneratedAt   time.Time     `json:"generatedAt"`
}

// GenerateRiskReport summarizes an already-annotated tree. It is a pure
// read-only pass; call AnalyzeTree first. An errored or nil root yields
// an empty report.
func GenerateRiskReport(root *deps.PackageNode) *Report {
	report := &Report{
		Distribution: map[Level]int{
			LevelLow: 0, LevelMedium: 0, LevelHigh: 0, LevelCritical: 0,
		},
		TopRisks:    []NodeSummary{},
		Deprecated:  []NodeSummary{},
		GeneratedAt: time.Now(),
	}
	if root == nil || root.Failed() {
		return report
	}
	report.Root = root.Name

	var sum int
	var all []NodeSummary
	root.Walk(func(n *deps.PackageNode) {
		report.TotalPackages++
		sum += n.RiskScore
		report.Distribution[Level(n.RiskLevel)]++

		summary := NodeSummary{
			Name:      n.Name,
			Version:   n.Version,
			Depth:     n.Depth,
			RiskScore: n.RiskScore,
			RiskLevel: n.RiskLevel,
		}
		all = append(all, summary)
		if n.Metadata.Deprecated {
			report.Deprecated = append(report.Deprecated, summary)
		}
	})

	report.AverageRisk = float64(sum) / float64(report.TotalPackages)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].RiskScore > all[j].RiskScore
	})
	if len(all) > TopRiskLimit {
		all = all[:TopRiskLimit]
	}
	report.TopRisks = all

	return report
}
