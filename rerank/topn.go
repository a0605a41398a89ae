package rerank

import (
	"context"

	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/pipeline"
)

// TopNNode 是展示预算截断节点，在打分之后截取前 N 个候选。
//
// 使用场景：
//   - 打分后只保留 Top 20/50 进入区块划分
//   - 控制返回结果数量
type TopNNode struct {
	// N 要保留的候选数量（Top N）
	// 如果 N <= 0 或 N > len(items)，则返回所有候选
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 {
		return items, nil
	}
	if len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
