// Package tunekit 是一个音乐推荐打分引擎（Music Recommendation Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank → PostProcess）
// - 规则打分: 可解释的加法规则（同歌手/相似歌手/同流派/标签/社区评分），每条贡献都带理由
// - 领域接口: 交互存储/曲库/社区统计定义在 core，由 store/catalog/feast 提供实现
// - engine.Engine 把画像构建、并发召回、打分与区块划分组装成开箱即用的入口
package tunekit

import "github.com/tunekit/tunekit/pipeline"

// 轻量 facade：便于用户直接 import "tunekit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
