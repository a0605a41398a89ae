// Package builders 注册内置 Node 的配置构建逻辑。
//
// 召回来源与过滤器依赖曲库/存储等运行时服务，无法从纯配置构建，
// 因此注册入口是显式的 Install(deps) 而非 init：
//
//	builders.Install(builders.Deps{Catalog: catalog, KV: kv, Stats: stats})
//	factory := config.DefaultFactory()
//	pipe, err := cfg.BuildPipeline(factory)
package builders

import (
	"fmt"
	"time"

	"github.com/tunekit/tunekit/config"
	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/feature"
	"github.com/tunekit/tunekit/filter"
	"github.com/tunekit/tunekit/pipeline"
	"github.com/tunekit/tunekit/pkg/conv"
	"github.com/tunekit/tunekit/rank"
	"github.com/tunekit/tunekit/recall"
	"github.com/tunekit/tunekit/rerank"
)

// Deps 是配置驱动 Node 需要注入的运行时服务。
type Deps struct {
	Catalog core.CatalogService
	KV      core.KVStore
	Stats   core.CommunityStatsService
}

// Install 基于注入的服务注册全部内置 Node 类型。
func Install(deps Deps) {
	config.Register("recall.fanout", buildFanoutNode(deps))
	config.Register("rank.score", BuildScoreNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("filter", buildFilterNode(deps))
	config.Register("feature.enrich", buildEnrichNode(deps))
}

func buildFanoutNode(deps Deps) config.NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		sourcesConfig, ok := cfg["sources"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("sources not found or invalid")
		}
		sources := make([]recall.Source, 0, len(sourcesConfig))
		for _, sc := range sourcesConfig {
			sourceMap, ok := sc.(map[string]interface{})
			if !ok {
				continue
			}
			sourceType := conv.ConfigGet(sourceMap, "type", "")
			limit := int(conv.ConfigGetInt64(sourceMap, "limit", 0))
			switch sourceType {
			case "favorite_artist":
				sources = append(sources, &recall.FavoriteArtist{
					Catalog:   deps.Catalog,
					Limit:     limit,
					PerArtist: int(conv.ConfigGetInt64(sourceMap, "per_artist", 0)),
				})
			case "related_artist":
				sources = append(sources, &recall.RelatedArtist{
					Catalog:   deps.Catalog,
					Limit:     limit,
					PerArtist: int(conv.ConfigGetInt64(sourceMap, "per_artist", 0)),
				})
			case "genre_discovery":
				sources = append(sources, &recall.GenreDiscovery{
					Catalog:   deps.Catalog,
					Limit:     limit,
					PerGenre:  int(conv.ConfigGetInt64(sourceMap, "per_genre", 0)),
					MinWeight: conv.ConfigGetFloat64(sourceMap, "min_weight", 0),
				})
			case "trending":
				keys := conv.SliceAnyToString(sourceMap["keys"])
				sources = append(sources, &recall.Trending{
					Store: deps.KV,
					Key:   conv.ConfigGet(sourceMap, "key", ""),
					Keys:  keys,
					Limit: limit,
				})
			default:
				return nil, fmt.Errorf("unknown source type: %s", sourceType)
			}
		}
		fanout := &recall.Fanout{Sources: sources}
		if sec := conv.ConfigGetInt64(cfg, "timeout", 0); sec > 0 {
			fanout.Timeout = time.Duration(sec) * time.Second
		}
		if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
			fanout.MaxConcurrent = int(n)
		}
		return fanout, nil
	}
}

// BuildScoreNode 构建打分节点；weights 块可选，存在时整体替换请求权重。
func BuildScoreNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &rank.ScoreNode{}
	if weightsMap, ok := cfg["weights"].(map[string]interface{}); ok {
		node.Weights = weightsFromConfig(weightsMap)
	}
	return node, nil
}

// BuildTopNNode 构建截断节点。
func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N: int(conv.ConfigGetInt64(cfg, "n", 0)),
	}, nil
}

func buildFilterNode(deps Deps) config.NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		filtersConfig, ok := cfg["filters"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("filters not found or invalid")
		}
		filters := make([]filter.Filter, 0, len(filtersConfig))
		for _, fc := range filtersConfig {
			filterMap, ok := fc.(map[string]interface{})
			if !ok {
				continue
			}
			filterType := conv.ConfigGet(filterMap, "type", "")
			switch filterType {
			case "blocklist":
				keys := conv.SliceAnyToString(filterMap["keys"])
				if keys == nil {
					keys = []string{}
				}
				filters = append(filters, &filter.BlocklistFilter{
					Keys:  keys,
					Store: deps.KV,
					Key:   conv.ConfigGet(filterMap, "key", ""),
				})
			case "expression":
				expr := conv.ConfigGet(filterMap, "expr", "")
				if expr == "" {
					return nil, fmt.Errorf("expression filter: expr is required")
				}
				filters = append(filters, &filter.ExpressionFilter{Expr: expr})
			default:
				return nil, fmt.Errorf("unknown filter type: %s", filterType)
			}
		}
		return &filter.FilterNode{Filters: filters}, nil
	}
}

func buildEnrichNode(deps Deps) config.NodeBuilder {
	return func(cfg map[string]interface{}) (pipeline.Node, error) {
		stats := deps.Stats
		if stats == nil && deps.KV != nil {
			stats = &feature.StoreStats{
				Store:   deps.KV,
				HashKey: conv.ConfigGet(cfg, "hash_key", ""),
			}
		}
		if stats == nil {
			return nil, fmt.Errorf("feature.enrich: no community stats service available")
		}
		return &feature.EnrichNode{Stats: stats}, nil
	}
}

// weightsFromConfig 从 config map 解析权重。
// 权重对象整体替换默认值，不做逐字段合并：缺失字段就是 0，
// 与 pipeline.Config 里 weights 块的反序列化语义一致。
func weightsFromConfig(m map[string]interface{}) *core.ScoringWeights {
	return &core.ScoringWeights{
		SameArtistBase:            conv.ConfigGetFloat64(m, "same_artist_base", 0),
		RelatedArtistBase:         conv.ConfigGetFloat64(m, "related_artist_base", 0),
		SameGenreBase:             conv.ConfigGetFloat64(m, "same_genre_base", 0),
		SameTagBase:               conv.ConfigGetFloat64(m, "same_tag_base", 0),
		HighRatingBonus:           conv.ConfigGetFloat64(m, "high_rating_bonus", 0),
		CommunityRatingMultiplier: conv.ConfigGetFloat64(m, "community_rating_multiplier", 0),
		AlreadyFavoritedPenalty:   conv.ConfigGetFloat64(m, "already_favorited_penalty", 0),
	}
}
