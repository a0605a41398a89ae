package recall

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/pipeline"
	"github.com/tunekit/tunekit/pkg/utils"
)

// Fanout 是一个 Recall Node：并发执行多个候选来源，并按 (id, type) 去重合并。
//
// 合并策略固定为来源优先级：favorite_artist > related_artist > genre_discovery > trending。
// 同一候选从多个来源出现时保留优先级最高的来源用于解释，候选只参与一次打分。
// 单个来源超时或出错时降级为空列表，不中断其他来源。
type Fanout struct {
	Sources       []Source
	Timeout       time.Duration // 每个来源的超时时间（0 表示不限制）
	MaxConcurrent int           // 最大并发数（0 表示无限制）
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	results := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		i, s := i, src
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// 超时或错误时该来源降级为空，不中断其他来源
				return nil
			}

			for _, it := range items {
				if it == nil {
					continue
				}
				if it.Source == "" {
					it.Source = s.SourceType()
				}
				it.PutLabel("recall_source", utils.Label{Value: s.Name(), Source: "recall"})
			}
			results[i] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return n.merge(results), nil
}

// merge 按来源优先级顺序拼接并去重：先到的（优先级更高的）候选胜出。
// 输出顺序确定：优先级 -> 来源注册顺序 -> 来源内顺序，与各来源完成先后无关。
func (n *Fanout) merge(results [][]*core.Item) []*core.Item {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return n.Sources[order[a]].SourceType().Priority() < n.Sources[order[b]].SourceType().Priority()
	})

	seen := make(map[string]*core.Item)
	out := make([]*core.Item, 0)
	for _, idx := range order {
		for _, it := range results[idx] {
			if it == nil {
				continue
			}
			key := it.Key()
			if old, ok := seen[key]; ok {
				// 候选已存在：只合并观测标签，来源保持先到者
				for k, v := range it.Labels {
					old.PutLabel(k, v)
				}
				continue
			}
			seen[key] = it
			out = append(out, it)
		}
	}
	return out
}
