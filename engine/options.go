package engine

import (
	"time"

	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/filter"
)

// Option 配置 Engine 的构建参数。
type Option func(*Engine)

// WithCommunityStats 接入社区统计服务（community_rating 规则的数据来源）。
// 不接入时该规则不触发，其余规则照常工作。
func WithCommunityStats(stats core.CommunityStatsService) Option {
	return func(e *Engine) { e.community = stats }
}

// WithKVStore 接入旁路存储（热门榜单、黑名单等）。
func WithKVStore(kv core.KVStore) Option {
	return func(e *Engine) { e.kv = kv }
}

// WithTrending 启用社区热门来源，产出独立的 Trending 区块。
// key 为空时使用默认 "trending:items"。
func WithTrending(key string) Option {
	return func(e *Engine) {
		e.trending = true
		if key != "" {
			e.trendingKey = key
		}
	}
}

// WithWeights 整体替换默认打分权重。
func WithWeights(w *core.ScoringWeights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithSourceLimit 设置每个候选来源的候选上限。
func WithSourceLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sourceLimit = n
		}
	}
}

// WithSectionLimit 设置每个区块的条目上限。
func WithSectionLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sectionLimit = n
		}
	}
}

// WithSourceTimeout 设置单个候选来源的超时；超时的来源降级为空。
func WithSourceTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.sourceTimeout = d
		}
	}
}

// WithMaxConcurrentSources 限制候选来源的并发数；0 表示不限制。
func WithMaxConcurrentSources(n int) Option {
	return func(e *Engine) { e.maxConcurrent = n }
}

// WithFilters 在打分前挂载候选过滤器（黑名单、表达式规则等）。
func WithFilters(filters ...filter.Filter) Option {
	return func(e *Engine) { e.filters = append(e.filters, filters...) }
}

// RequestOption 覆盖单次请求的参数，不影响 Engine 级默认值。
type RequestOption func(*requestConfig)

type requestConfig struct {
	weights      *core.ScoringWeights
	sectionLimit int
}

// WithRequestWeights 为单次请求整体替换打分权重（试验性调参场景）。
func WithRequestWeights(w *core.ScoringWeights) RequestOption {
	return func(rc *requestConfig) { rc.weights = w }
}

// WithRequestSectionLimit 为单次请求覆盖区块上限。
func WithRequestSectionLimit(n int) RequestOption {
	return func(rc *requestConfig) {
		if n > 0 {
			rc.sectionLimit = n
		}
	}
}
