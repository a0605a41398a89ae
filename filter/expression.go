package filter

import (
	"context"

	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/pkg/dsl"
)

// ExpressionFilter 用 CEL 表达式定义排除规则，表达式为 true 的候选被过滤。
// 运营侧可通过配置下发规则，例如：
//
//	item.popularity < 10 && item.source == "genre_discovery"
type ExpressionFilter struct {
	// Expr 是 CEL 表达式，见 pkg/dsl。空表达式不过滤任何候选。
	Expr string
}

func (f *ExpressionFilter) Name() string {
	return "filter.expression"
}

func (f *ExpressionFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}
	matched, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		// 表达式错误不阻断链路，候选按保留处理
		return false, err
	}
	return matched, nil
}
