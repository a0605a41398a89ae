package recall

import (
	"context"
	"sort"

	"github.com/tunekit/tunekit/core"
)

// GenreDiscovery 按用户流派偏好搜索曲库生成候选。
// 只使用权重超过 MinWeight 的流派；结果中歌手未被收藏的条目排在前面（最大化新鲜度）。
type GenreDiscovery struct {
	Catalog core.CatalogService

	// Limit 是本来源的候选上限；<= 0 时使用默认 20。
	Limit int

	// PerGenre 是单个流派搜索的条目数；<= 0 时使用默认 10。
	PerGenre int

	// MinWeight 是流派参与发现的最低权重；<= 0 时使用默认 0.2。
	MinWeight float64
}

func (r *GenreDiscovery) Name() string                { return "recall.genre_discovery" }
func (r *GenreDiscovery) SourceType() core.SourceType { return core.SourceGenreDiscovery }

func (r *GenreDiscovery) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || rctx == nil {
		return nil, nil
	}
	prefs := rctx.Preferences()
	if len(prefs.GenreWeights) == 0 {
		return nil, nil
	}

	genres := r.eligibleGenres(prefs)
	if len(genres) == 0 {
		return nil, nil
	}

	all := make([]*core.Item, 0)
	for _, g := range genres {
		items, err := r.Catalog.SearchByGenre(ctx, g, r.perGenre())
		if err != nil {
			continue
		}
		for _, it := range items {
			if it == nil {
				continue
			}
			it.Source = core.SourceGenreDiscovery
			all = append(all, it)
		}
	}

	// 新鲜度优先：未收藏歌手的条目排在前面，组内保持原顺序
	sort.SliceStable(all, func(i, j int) bool {
		ni := !prefs.HasArtist(all[i].ArtistID)
		nj := !prefs.HasArtist(all[j].ArtistID)
		return ni && !nj
	})
	return truncate(all, r.limit()), nil
}

// eligibleGenres 返回权重超过阈值的流派，按权重降序（权重相同按字典序，保证确定性）。
func (r *GenreDiscovery) eligibleGenres(prefs *core.UserPreferences) []string {
	minWeight := r.MinWeight
	if minWeight <= 0 {
		minWeight = 0.2
	}

	genres := make([]string, 0, len(prefs.GenreWeights))
	for g, w := range prefs.GenreWeights {
		if w > minWeight {
			genres = append(genres, g)
		}
	}
	sort.Slice(genres, func(i, j int) bool {
		wi, wj := prefs.GenreWeights[genres[i]], prefs.GenreWeights[genres[j]]
		if wi != wj {
			return wi > wj
		}
		return genres[i] < genres[j]
	})
	return genres
}

func (r *GenreDiscovery) limit() int {
	if r.Limit > 0 {
		return r.Limit
	}
	return 20
}

func (r *GenreDiscovery) perGenre() int {
	if r.PerGenre > 0 {
		return r.PerGenre
	}
	return 10
}
