// Package rank 实现加权规则打分（Scorer）。
package rank

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/pipeline"
	"github.com/tunekit/tunekit/pkg/utils"
)

// ScoreNode 是规则打分 Node：
// - 对每个候选套用全部规则，写入 Score 与 Reasons（按贡献绝对值降序）
// - 按批次最大分归一化出 MatchPercent（批次相对，权重调整后依然稳定）
// - 按分数降序稳定排序；同分保持候选生成顺序，不依赖 map 迭代顺序
type ScoreNode struct {
	// Weights 覆盖请求权重（可选）；nil 时使用 rctx.EffectiveWeights()
	Weights *core.ScoringWeights
}

func (n *ScoreNode) Name() string        { return "rank.score" }
func (n *ScoreNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ScoreNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	weights := n.Weights
	if weights == nil {
		weights = rctx.EffectiveWeights()
	}
	prefs := rctx.Preferences()

	maxScore := 0.0
	for _, it := range items {
		if it == nil {
			continue
		}
		reasons := applyRules(it, prefs, weights)
		var score float64
		for _, r := range reasons {
			score += r.Contribution
		}
		core.SortReasons(reasons)

		it.Score = score
		it.Reasons = reasons
		it.PutLabel("rank_rules", utils.Label{Value: strconv.Itoa(len(reasons)), Source: "rank"})

		if score > maxScore {
			maxScore = score
		}
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.MatchPercent = matchPercent(it.Score, maxScore)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// matchPercent = round(100 * max(0, score) / max(1, maxScore))，并截断到 [0, 100]。
// 负分恒为 0；batch 最大分为正时，最大分候选恒为 100。
func matchPercent(score, maxScore float64) int {
	if score <= 0 {
		return 0
	}
	denom := math.Max(1, maxScore)
	pct := int(math.Round(100 * score / denom))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
