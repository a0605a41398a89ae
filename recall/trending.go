package recall

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tunekit/tunekit/core"
)

// Trending 是社区热门来源，支持从 KVStore 读取热门物品榜单。
// - 优先使用有序集合 ZRange（按热度分数降序），member 形如 "track:123"
// - 否则从普通 key 读取 JSON 数组
// - Store 为空时使用内存中的 Keys 作为 fallback
//
// 这是一个补充来源：去重优先级最低，且只进入 Trending 区块，
// 不参与三个偏好驱动区块的划分。
type Trending struct {
	Store core.KVStore
	Key   string   // 存储 key，例如 "trending:items"
	Keys  []string // fallback 内存列表，元素形如 "track:123"

	// Limit 是本来源的候选上限；<= 0 时使用默认 20。
	Limit int
}

func (r *Trending) Name() string                { return "recall.trending" }
func (r *Trending) SourceType() core.SourceType { return core.SourceTrending }

func (r *Trending) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	var keys []string

	if r.Store != nil && r.Key != "" {
		members, err := r.Store.ZRange(ctx, r.Key, 0, int64(r.limit())-1)
		if err == nil && len(members) > 0 {
			keys = members
		} else {
			data, err := r.Store.Get(ctx, r.Key)
			if err == nil {
				var parsed []string
				if json.Unmarshal(data, &parsed) == nil {
					keys = parsed
				}
			}
		}
	}

	if len(keys) == 0 {
		keys = r.Keys
	}

	out := make([]*core.Item, 0, len(keys))
	for _, k := range keys {
		ref, ok := parseRefKey(k)
		if !ok {
			continue
		}
		it := core.NewItem(ref.ID, ref.Type)
		it.Source = core.SourceTrending
		out = append(out, it)
	}
	return truncate(out, r.limit()), nil
}

func (r *Trending) limit() int {
	if r.Limit > 0 {
		return r.Limit
	}
	return 20
}

// parseRefKey 解析 "type:id" 形式的榜单成员。
func parseRefKey(s string) (core.ItemRef, bool) {
	typ, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return core.ItemRef{}, false
	}
	switch core.ItemType(typ) {
	case core.TypeTrack, core.TypeAlbum:
		return core.ItemRef{ID: id, Type: core.ItemType(typ)}, true
	default:
		return core.ItemRef{}, false
	}
}
