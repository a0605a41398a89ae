package feast

import (
	"context"
	"fmt"

	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/pkg/conv"
)

const (
	// FeatureCommunityRating 社区评分特征名
	FeatureCommunityRating = "item_stats:community_rating"
	// FeaturePopularity 热度特征名
	FeaturePopularity = "item_stats:popularity"
	// EntityItemKey 实体键名，取值为 ItemRef.Key()（如 "track:123"）
	EntityItemKey = "item_key"
)

// CommunityStats 将 Feast 在线特征适配为 core.CommunityStatsService。
//
// 特征仓库中按 item_key 维度存储两个特征：
//   - item_stats:community_rating（float64，1-5 区间）
//   - item_stats:popularity（int64，0-100 区间）
type CommunityStats struct {
	client  Client
	project string
}

// NewCommunityStats 创建社区统计服务
func NewCommunityStats(client Client, project string) *CommunityStats {
	return &CommunityStats{
		client:  client,
		project: project,
	}
}

// Name 返回服务名称
func (s *CommunityStats) Name() string {
	return "feast_community_stats"
}

// BatchItemStats 批量获取条目的社区统计。
// 特征仓库中缺失的条目不会出现在结果 map 中，调用方按缺失处理。
func (s *CommunityStats) BatchItemStats(ctx context.Context, refs []core.ItemRef) (map[string]core.ItemStats, error) {
	if len(refs) == 0 {
		return map[string]core.ItemStats{}, nil
	}

	entityRows := make([]map[string]interface{}, len(refs))
	for i, ref := range refs {
		entityRows[i] = map[string]interface{}{
			EntityItemKey: ref.Key(),
		}
	}

	resp, err := s.client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{FeatureCommunityRating, FeaturePopularity},
		EntityRows: entityRows,
		Project:    s.project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast: batch item stats: %w", err)
	}

	result := make(map[string]core.ItemStats, len(refs))
	for i, fv := range resp.FeatureVectors {
		if i >= len(refs) {
			break
		}
		var stats core.ItemStats
		var found bool
		if v, ok := fv.Values[FeatureCommunityRating]; ok {
			if f, ok := conv.ToFloat64(v); ok {
				stats.CommunityRating = f
				found = true
			}
		}
		if v, ok := fv.Values[FeaturePopularity]; ok {
			if f, ok := conv.ToFloat64(v); ok {
				stats.Popularity = int(f)
				found = true
			}
		}
		if found {
			result[refs[i].Key()] = stats
		}
	}

	return result, nil
}

// Close 关闭底层客户端
func (s *CommunityStats) Close() error {
	return s.client.Close()
}

// 确保 CommunityStats 实现了 core.CommunityStatsService 接口
var _ core.CommunityStatsService = (*CommunityStats)(nil)
