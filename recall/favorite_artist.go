package recall

import (
	"context"
	"sort"

	"github.com/tunekit/tunekit/core"
)

// FavoriteArtist 从用户收藏歌手的曲库热门条目生成候选。
// 按曲库热度降序，整个来源截断到 Limit。
type FavoriteArtist struct {
	Catalog core.CatalogService

	// Limit 是本来源的候选上限；<= 0 时使用默认 20。
	Limit int

	// PerArtist 是单个歌手拉取的热门条目数；<= 0 时使用默认 10。
	PerArtist int
}

func (r *FavoriteArtist) Name() string                { return "recall.favorite_artist" }
func (r *FavoriteArtist) SourceType() core.SourceType { return core.SourceFavoriteArtist }

func (r *FavoriteArtist) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || rctx == nil {
		return nil, nil
	}
	prefs := rctx.Preferences()
	if len(prefs.ArtistIDs) == 0 {
		return nil, nil
	}

	artistIDs := sortedKeys(prefs.ArtistIDs)

	all := make([]*core.Item, 0)
	for _, artistID := range artistIDs {
		items, err := r.Catalog.ArtistTopItems(ctx, artistID, r.perArtist())
		if err != nil {
			// 单个歌手查询失败只跳过该歌手
			continue
		}
		for _, it := range items {
			if it == nil {
				continue
			}
			it.Source = core.SourceFavoriteArtist
			it.SourceArtistID = artistID
			all = append(all, it)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Popularity > all[j].Popularity
	})
	return truncate(all, r.limit()), nil
}

func (r *FavoriteArtist) limit() int {
	if r.Limit > 0 {
		return r.Limit
	}
	return 20
}

func (r *FavoriteArtist) perArtist() int {
	if r.PerArtist > 0 {
		return r.PerArtist
	}
	return 10
}

// sortedKeys 返回排序后的 key 列表，保证候选生成顺序确定，不依赖 map 迭代顺序。
func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func truncate(items []*core.Item, limit int) []*core.Item {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
