package recall

import (
	"context"

	"github.com/tunekit/tunekit/core"
)

// Source 表示一个可复用的候选来源（收藏歌手/相似歌手/流派发现/...）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
type Source interface {
	Name() string

	// SourceType 返回来源标记，决定去重时的优先级与解释文案。
	SourceType() core.SourceType

	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
