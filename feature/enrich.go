// Package feature 负责在打分前为候选注入社区统计（均分/热度）。
package feature

import (
	"context"

	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/pipeline"
	"github.com/tunekit/tunekit/pkg/utils"
)

// EnrichNode 是统计注入节点：批量获取候选的社区统计并写回 Item。
// community_rating 打分规则依赖这里注入的 CommunityRating。
//
// 获取失败时降级为 no-op：统计缺失只意味着对应规则不触发，不中断请求。
type EnrichNode struct {
	Stats core.CommunityStatsService
}

func (n *EnrichNode) Name() string        { return "feature.enrich" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Stats == nil || len(items) == 0 {
		return items, nil
	}

	refs := make([]core.ItemRef, 0, len(items))
	for _, it := range items {
		if it != nil {
			refs = append(refs, it.ItemRef)
		}
	}

	stats, err := n.Stats.BatchItemStats(ctx, refs)
	if err != nil || len(stats) == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		st, ok := stats[it.Key()]
		if !ok {
			continue
		}
		if st.CommunityRating > 0 {
			it.CommunityRating = st.CommunityRating
		}
		if st.Popularity > 0 && it.Popularity == 0 {
			it.Popularity = st.Popularity
		}
		it.PutLabel("stats_source", utils.Label{Value: n.Stats.Name(), Source: "postprocess"})
	}
	return items, nil
}
