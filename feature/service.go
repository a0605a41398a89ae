package feature

import (
	"context"
	"encoding/json"

	"github.com/tunekit/tunekit/core"
)

// StoreStats 是 KVStore 实现的社区统计服务。
// 统计以 Hash 存储：key 为 HashKey，field 为 ItemRef.Key()，value 为 JSON 编码的 ItemStats。
// 离线任务定期回写，链路侧只读。
type StoreStats struct {
	Store core.KVStore

	// HashKey 是统计 Hash 的 key；空时使用默认 "stats:items"。
	HashKey string
}

type storedStats struct {
	CommunityRating float64 `json:"community_rating"`
	Popularity      int     `json:"popularity"`
}

func (s *StoreStats) Name() string { return "stats.store" }

func (s *StoreStats) BatchItemStats(ctx context.Context, refs []core.ItemRef) (map[string]core.ItemStats, error) {
	if s.Store == nil || len(refs) == 0 {
		return map[string]core.ItemStats{}, nil
	}

	key := s.HashKey
	if key == "" {
		key = "stats:items"
	}

	all, err := s.Store.HGetAll(ctx, key)
	if err != nil {
		return nil, err
	}

	out := make(map[string]core.ItemStats, len(refs))
	for _, ref := range refs {
		raw, ok := all[ref.Key()]
		if !ok {
			continue
		}
		var st storedStats
		if json.Unmarshal(raw, &st) != nil {
			continue
		}
		out[ref.Key()] = core.ItemStats{
			CommunityRating: st.CommunityRating,
			Popularity:      st.Popularity,
		}
	}
	return out, nil
}

func (s *StoreStats) Close() error { return nil }

// SetItemStats 回写单个物品的统计（供离线任务/测试使用）。
func (s *StoreStats) SetItemStats(ctx context.Context, ref core.ItemRef, stats core.ItemStats) error {
	key := s.HashKey
	if key == "" {
		key = "stats:items"
	}
	raw, err := json.Marshal(storedStats{
		CommunityRating: stats.CommunityRating,
		Popularity:      stats.Popularity,
	})
	if err != nil {
		return err
	}
	return s.Store.HSet(ctx, key, ref.Key(), raw)
}

// StaticStats 是内存固定表实现的社区统计服务，用于测试与示例。
type StaticStats struct {
	Stats map[string]core.ItemStats // key 为 ItemRef.Key()
}

func (s *StaticStats) Name() string { return "stats.static" }

func (s *StaticStats) BatchItemStats(_ context.Context, refs []core.ItemRef) (map[string]core.ItemStats, error) {
	out := make(map[string]core.ItemStats, len(refs))
	for _, ref := range refs {
		if st, ok := s.Stats[ref.Key()]; ok {
			out[ref.Key()] = st
		}
	}
	return out, nil
}

func (s *StaticStats) Close() error { return nil }

// 确保实现了 core.CommunityStatsService 接口
var _ core.CommunityStatsService = (*StoreStats)(nil)
var _ core.CommunityStatsService = (*StaticStats)(nil)
