// Package profile 构建用户偏好画像（Preference Aggregator）。
//
// 画像每次请求现算，不做跨请求缓存；交互存储不可达是请求级致命错误，
// 曲库查询失败只跳过对应条目，画像整体降级可用。
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tunekit/tunekit/core"
)

// Builder 从交互存储与曲库聚合出 UserPreferences。
type Builder struct {
	Store   core.InteractionStore
	Catalog core.CatalogService

	// CatalogTimeout 是每次曲库批量调用的超时；0 表示使用默认 3s。
	CatalogTimeout time.Duration
}

const defaultCatalogTimeout = 3 * time.Second

// Build 聚合用户的收藏、评分、标签，产出归一化画像。
//
// 三路读取相互独立，并发执行后汇合；任何一路存储失败都会使整个请求失败
// （存储实现负责包装 core.ErrInteractionUnavailable）。
// 零信号用户返回全空画像，不是错误。
func (b *Builder) Build(ctx context.Context, userID string) (*core.UserPreferences, error) {
	if b.Store == nil {
		return nil, fmt.Errorf("profile: %w", core.ErrInteractionUnavailable)
	}

	var (
		favArtists []string
		favorites  []core.Favorite
		ratings    []core.Rating
		tags       []string
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		favArtists, err = b.Store.FavoriteArtistIDs(egCtx, userID)
		if err != nil {
			return fmt.Errorf("profile: fetch favorite artists: %w", err)
		}
		favorites, err = b.Store.Favorites(egCtx, userID)
		if err != nil {
			return fmt.Errorf("profile: fetch favorites: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		ratings, err = b.Store.Ratings(egCtx, userID)
		if err != nil {
			return fmt.Errorf("profile: fetch ratings: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		tags, err = b.Store.Tags(egCtx, userID)
		if err != nil {
			return fmt.Errorf("profile: fetch tags: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	prefs := core.NewUserPreferences(userID)

	// 收藏歌手集合与已收藏物品集合
	for _, id := range favArtists {
		if id != "" {
			prefs.ArtistIDs[id] = true
		}
	}
	for _, fav := range favorites {
		prefs.FavoriteKeys[fav.Key()] = true
		for _, id := range fav.ArtistIDs {
			if id != "" {
				prefs.ArtistIDs[id] = true
			}
		}
	}

	// 标签：小写 + 去重
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			prefs.Tags[t] = true
		}
	}

	// 均分与高分条目；无评分时基线为 0，不做除法
	if len(ratings) > 0 {
		var sum float64
		for _, r := range ratings {
			sum += r.Value
		}
		prefs.AverageRating = sum / float64(len(ratings))
	}

	// 高分划分只看评分本身，歌手/流派是后续补全的可选字段；
	// 曲库不可用或条目未命中时高分条目依然成立
	for _, r := range ratings {
		if r.Value > prefs.AverageRating {
			prefs.HighRated = append(prefs.HighRated, core.RatedItem{
				ItemRef: r.ItemRef,
				Rating:  r.Value,
			})
		}
	}

	b.accumulateRatingAggregates(ctx, prefs, ratings)
	b.accumulateGenreWeights(ctx, prefs, favorites)

	return prefs, nil
}

// accumulateRatingAggregates 批量补全评分条目的歌手/流派，累积维度均分，
// 并为已划入高分集合的条目回填歌手/流派。
// 曲库失败或条目缺失时跳过对应条目，不中断聚合。
func (b *Builder) accumulateRatingAggregates(ctx context.Context, prefs *core.UserPreferences, ratings []core.Rating) {
	if b.Catalog == nil || len(ratings) == 0 {
		return
	}

	refs := make([]core.ItemRef, 0, len(ratings))
	byKey := make(map[string]core.Rating, len(ratings))
	for _, r := range ratings {
		refs = append(refs, r.ItemRef)
		byKey[r.Key()] = r
	}
	highIdx := make(map[string]int, len(prefs.HighRated))
	for i, hr := range prefs.HighRated {
		highIdx[hr.Key()] = i
	}

	callCtx, cancel := context.WithTimeout(ctx, b.catalogTimeout())
	defer cancel()

	items, err := b.Catalog.Items(callCtx, refs)
	if err != nil {
		return
	}

	type aggregate struct {
		sum   float64
		count int
	}
	artistAgg := make(map[string]*aggregate)
	genreAgg := make(map[string]*aggregate)

	for _, it := range items {
		if it == nil {
			continue
		}
		rating, ok := byKey[it.Key()]
		if !ok {
			continue
		}

		artistIDs := make([]string, 0, 1)
		if it.ArtistID != "" {
			artistIDs = append(artistIDs, it.ArtistID)
		}
		genres := make([]string, 0, len(it.Genres))
		for _, g := range it.Genres {
			g = strings.ToLower(g)
			if g != "" {
				genres = append(genres, g)
			}
		}

		for _, id := range artistIDs {
			agg := artistAgg[id]
			if agg == nil {
				agg = &aggregate{}
				artistAgg[id] = agg
			}
			agg.sum += rating.Value
			agg.count++
		}
		for _, g := range genres {
			agg := genreAgg[g]
			if agg == nil {
				agg = &aggregate{}
				genreAgg[g] = agg
			}
			agg.sum += rating.Value
			agg.count++
		}

		if i, ok := highIdx[it.Key()]; ok {
			prefs.HighRated[i].ArtistIDs = artistIDs
			prefs.HighRated[i].Genres = genres
		}
	}

	// 归一化集中在累积完成后的单次遍历，避免结果依赖条目顺序
	for id, agg := range artistAgg {
		if agg.count > 0 {
			prefs.ArtistRatings[id] = agg.sum / float64(agg.count)
		}
	}
	for g, agg := range genreAgg {
		if agg.count > 0 {
			prefs.GenreRatings[g] = agg.sum / float64(agg.count)
		}
	}
}

// accumulateGenreWeights 统计收藏歌手与收藏物品的流派出现次数，按最大计数归一化到 (0,1]。
func (b *Builder) accumulateGenreWeights(ctx context.Context, prefs *core.UserPreferences, favorites []core.Favorite) {
	if b.Catalog == nil {
		return
	}
	if len(prefs.ArtistIDs) == 0 && len(favorites) == 0 {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, b.catalogTimeout())
	defer cancel()

	counts := make(map[string]int)

	if len(prefs.ArtistIDs) > 0 {
		ids := make([]string, 0, len(prefs.ArtistIDs))
		for id := range prefs.ArtistIDs {
			ids = append(ids, id)
		}
		artists, err := b.Catalog.Artists(callCtx, ids)
		if err == nil {
			for _, a := range artists {
				for _, g := range a.Genres {
					g = strings.ToLower(g)
					if g != "" {
						counts[g]++
					}
				}
			}
		}
	}

	if len(favorites) > 0 {
		refs := make([]core.ItemRef, 0, len(favorites))
		for _, fav := range favorites {
			refs = append(refs, fav.ItemRef)
		}
		items, err := b.Catalog.Items(callCtx, refs)
		if err == nil {
			for _, it := range items {
				if it == nil {
					continue
				}
				for _, g := range it.Genres {
					g = strings.ToLower(g)
					if g != "" {
						counts[g]++
					}
				}
			}
		}
	}

	if len(counts) == 0 {
		return
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	for g, c := range counts {
		prefs.GenreWeights[g] = float64(c) / float64(max)
	}
}

func (b *Builder) catalogTimeout() time.Duration {
	if b.CatalogTimeout > 0 {
		return b.CatalogTimeout
	}
	return defaultCatalogTimeout
}
