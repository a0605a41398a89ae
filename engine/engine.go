// Package engine 是推荐链路的入口：聚合画像构建、候选召回、打分与区块划分。
//
// 典型用法：
//
//	eng := engine.New(store, catalog,
//		engine.WithCommunityStats(stats),
//		engine.WithSectionLimit(20),
//	)
//	result, err := eng.RequestRecommendations(ctx, "user_1")
//
// 前台"手动刷新"场景使用 Refresh：同一 Engine 上更新的刷新会取代仍在进行的
// 旧刷新，旧刷新返回 SUPERSEDED 错误且结果被丢弃，避免旧结果覆盖新结果。
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/feature"
	"github.com/tunekit/tunekit/filter"
	"github.com/tunekit/tunekit/pipeline"
	"github.com/tunekit/tunekit/pkg/utils"
	"github.com/tunekit/tunekit/profile"
	"github.com/tunekit/tunekit/rank"
	"github.com/tunekit/tunekit/recall"
	"github.com/tunekit/tunekit/rerank"
)

const (
	defaultSourceLimit   = 20
	defaultSectionLimit  = 20
	defaultSourceTimeout = 2 * time.Second
	defaultTrendingKey   = "trending:items"
)

// Result 是一次推荐请求的产出。
type Result struct {
	UserID      string           `json:"user_id"`
	Sections    *rerank.Sections `json:"sections"`
	Generation  uint64           `json:"generation"`
	GeneratedAt time.Time        `json:"generated_at"`

	// EmptyProfile 表示用户还没有任何偏好信号，区块为空是引导态而非故障
	EmptyProfile bool `json:"empty_profile"`
}

// Engine 把画像/召回/打分/划分组装成开箱即用的推荐服务。
// 所有依赖都是领域接口，存储与曲库的具体后端由宿主应用注入。
type Engine struct {
	store   core.InteractionStore
	catalog core.CatalogService

	community core.CommunityStatsService
	kv        core.KVStore

	weights       *core.ScoringWeights
	sourceLimit   int
	sectionLimit  int
	sourceTimeout time.Duration
	maxConcurrent int
	filters       []filter.Filter

	trending    bool
	trendingKey string

	// refreshSeq 单调递增；每次 Refresh 领取一个序号，
	// 完成时序号不再是最新的就丢弃结果
	refreshSeq atomic.Uint64
	latest     atomic.Pointer[Result]
}

// New 创建推荐引擎。store 与 catalog 是必填依赖。
func New(store core.InteractionStore, catalog core.CatalogService, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		catalog:       catalog,
		sourceLimit:   defaultSourceLimit,
		sectionLimit:  defaultSectionLimit,
		sourceTimeout: defaultSourceTimeout,
		trendingKey:   defaultTrendingKey,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RequestRecommendations 执行一次完整的推荐请求：
// 构建画像 -> 并发召回 -> 补全统计 -> 过滤 -> 打分 -> 区块划分。
//
// 纯函数语义：不修改任何用户数据，同样的输入产出同样的区块。
// 交互存储不可达时请求失败（core.IsUnavailable 为真）；
// 曲库的单点故障表现为对应来源降级，不上抛错误。
func (e *Engine) RequestRecommendations(ctx context.Context, userID string, opts ...RequestOption) (*Result, error) {
	if e.store == nil || e.catalog == nil {
		return nil, fmt.Errorf("engine: interaction store and catalog are required")
	}

	rc := &requestConfig{sectionLimit: e.sectionLimit}
	for _, opt := range opts {
		opt(rc)
	}

	builder := &profile.Builder{Store: e.store, Catalog: e.catalog}
	prefs, err := builder.Build(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		UserID:      userID,
		GeneratedAt: time.Now(),
	}

	// 零信号用户：没有热门来源兜底时直接返回全空区块（UI 引导态）
	if prefs.Empty() && !e.trending {
		result.EmptyProfile = true
		result.Sections = rerank.AssembleSections(nil, rc.sectionLimit)
		return result, nil
	}

	weights := rc.weights
	if weights == nil {
		weights = e.weights
	}
	rctx := &core.RecommendContext{
		UserID:  userID,
		Prefs:   prefs,
		Weights: weights,
		Labels:  make(map[string]utils.Label),
	}

	p := &pipeline.Pipeline{Nodes: e.buildNodes(prefs)}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	result.EmptyProfile = prefs.Empty()
	result.Sections = rerank.AssembleSections(items, rc.sectionLimit)
	return result, nil
}

// Refresh 是 RequestRecommendations 的"最新者胜出"变体。
// 并发触发多次刷新时，只有最后触发的那次会落盘为 Latest 并返回结果；
// 被取代的刷新返回 core.ErrSuperseded，结果被丢弃。
func (e *Engine) Refresh(ctx context.Context, userID string, opts ...RequestOption) (*Result, error) {
	seq := e.refreshSeq.Add(1)

	result, err := e.RequestRecommendations(ctx, userID, opts...)
	if err != nil {
		return nil, err
	}

	return e.commit(result, seq)
}

// commit 把刷新结果落盘为 Latest。
// 检查与落盘之间可能插入一次更新的刷新，所以用 CAS 循环提交：
// Latest 上已经有更高代数的结果时放弃本次结果，保证代数只增不减。
func (e *Engine) commit(result *Result, seq uint64) (*Result, error) {
	result.Generation = seq
	for {
		cur := e.latest.Load()
		if e.refreshSeq.Load() != seq || (cur != nil && cur.Generation > seq) {
			return nil, fmt.Errorf("engine: refresh %d: %w", seq, core.ErrSuperseded)
		}
		if e.latest.CompareAndSwap(cur, result) {
			return result, nil
		}
	}
}

// Latest 返回最近一次成功刷新的结果；还没有刷新过时返回 nil。
func (e *Engine) Latest() *Result {
	return e.latest.Load()
}

// Close 释放引擎持有的资源（社区统计连接等）。
// 存储与曲库由宿主应用注入，生命周期也由宿主应用管理，这里不关闭。
func (e *Engine) Close() error {
	if e.community != nil {
		return e.community.Close()
	}
	return nil
}

// buildNodes 组装单次请求的 Pipeline 节点链。
func (e *Engine) buildNodes(prefs *core.UserPreferences) []pipeline.Node {
	sources := []recall.Source{}
	if !prefs.Empty() {
		sources = append(sources,
			&recall.FavoriteArtist{Catalog: e.catalog, Limit: e.sourceLimit},
			&recall.RelatedArtist{Catalog: e.catalog, Limit: e.sourceLimit},
			&recall.GenreDiscovery{Catalog: e.catalog, Limit: e.sourceLimit},
		)
	}
	if e.trending {
		sources = append(sources, &recall.Trending{
			Store: e.kv,
			Key:   e.trendingKey,
			Limit: e.sourceLimit,
		})
	}

	nodes := []pipeline.Node{
		&recall.Fanout{
			Sources:       sources,
			Timeout:       e.sourceTimeout,
			MaxConcurrent: e.maxConcurrent,
		},
	}

	if e.community != nil {
		nodes = append(nodes, &feature.EnrichNode{Stats: e.community})
	}
	if len(e.filters) > 0 {
		nodes = append(nodes, &filter.FilterNode{Filters: e.filters})
	}

	nodes = append(nodes, &rank.ScoreNode{})
	return nodes
}
