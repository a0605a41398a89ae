package recall

import (
	"context"
	"sort"

	"github.com/tunekit/tunekit/core"
)

// RelatedArtist 从收藏歌手的相似歌手中生成候选：
// 对每个收藏歌手拉取相似歌手，剔除已收藏的，再取其热门条目。
// 相似歌手在请求内去重，避免重复的曲库调用。
type RelatedArtist struct {
	Catalog core.CatalogService

	// Limit 是本来源的候选上限；<= 0 时使用默认 20。
	Limit int

	// PerArtist 是单个相似歌手拉取的热门条目数；<= 0 时使用默认 5。
	PerArtist int
}

func (r *RelatedArtist) Name() string                { return "recall.related_artist" }
func (r *RelatedArtist) SourceType() core.SourceType { return core.SourceRelatedArtist }

func (r *RelatedArtist) Recall(
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

	// 请求级去重：同一个相似歌手可能从多个收藏歌手指到
	seenRelated := make(map[string]bool)
	related := make([]core.Artist, 0)

	for _, artistID := range sortedKeys(prefs.ArtistIDs) {
		artists, err := r.Catalog.RelatedArtists(ctx, artistID)
		if err != nil {
			continue
		}
		for _, a := range artists {
			if a.ID == "" || prefs.HasArtist(a.ID) || seenRelated[a.ID] {
				continue
			}
			seenRelated[a.ID] = true
			related = append(related, a)
		}
	}

	all := make([]*core.Item, 0)
	for _, a := range related {
		if len(all) >= r.limit() {
			break
		}
		items, err := r.Catalog.ArtistTopItems(ctx, a.ID, r.perArtist())
		if err != nil {
			continue
		}
		for _, it := range items {
			if it == nil {
				continue
			}
			it.Source = core.SourceRelatedArtist
			it.SourceArtistID = a.ID
			all = append(all, it)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Popularity > all[j].Popularity
	})
	return truncate(all, r.limit()), nil
}

func (r *RelatedArtist) limit() int {
	if r.Limit > 0 {
		return r.Limit
	}
	return 20
}

func (r *RelatedArtist) perArtist() int {
	if r.PerArtist > 0 {
		return r.PerArtist
	}
	return 5
}
