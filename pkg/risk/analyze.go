package risk

import (
	"time"

	"github.com/depscope/depscope/pkg/deps"
)

// AnalyzeTree annotates every node reachable from root, including root
// itself, with its risk score and level. The tree is mutated in place;
// structure is never changed.
//
// An errored root (a failed resolution) is left untouched so callers can
// surface the failure instead of a meaningless score.
func AnalyzeTree(root *deps.PackageNode) {
	if root == nil || root.Failed() {
		return
	}
	analyzeAt(root, time.Now())
}

// analyzeAt is the clock-injected form of AnalyzeTree, used by tests.
func analyzeAt(root *deps.PackageNode, now time.Time) {
	root.Walk(func(n *deps.PackageNode) {
		score := Combine(ScoreNode(n, now))
		n.RiskScore = score
		n.RiskLevel = string(LevelFor(score))
	})
}
