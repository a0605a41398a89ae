package recall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/pkg/utils"
)

// stubSource 是测试用的静态候选来源。
type stubSource struct {
	name  string
	typ   core.SourceType
	items []*core.Item
	err   error
	delay time.Duration
}

func (s *stubSource) Name() string                { return s.name }
func (s *stubSource) SourceType() core.SourceType { return s.typ }

func (s *stubSource) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.items, s.err
}

func stubItem(id string, src core.SourceType) *core.Item {
	it := core.NewItem(id, core.TypeTrack)
	it.Source = src
	return it
}

func TestFanout_PriorityDedup(t *testing.T) {
	// 同一候选同时出现在流派发现和收藏歌手来源：收藏歌手（优先级更高）胜出，
	// 与来源注册顺序无关。
	dup := stubItem("t1", core.SourceGenreDiscovery)
	dup.PutLabel("genre", utils.Label{Value: "rock", Source: "recall"})

	node := &Fanout{Sources: []Source{
		&stubSource{name: "genre", typ: core.SourceGenreDiscovery, items: []*core.Item{
			dup,
			stubItem("t2", core.SourceGenreDiscovery),
		}},
		&stubSource{name: "fav", typ: core.SourceFavoriteArtist, items: []*core.Item{
			stubItem("t1", core.SourceFavoriteArtist),
		}},
	}}

	out, err := node.Process(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("期望去重后 2 个候选，实际得到 %d 个", len(out))
	}
	// 输出顺序按优先级：t1(favorite_artist) 在 t2(genre_discovery) 之前
	if out[0].ID != "t1" || out[0].Source != core.SourceFavoriteArtist {
		t.Errorf("重复候选应该保留高优先级来源，实际得到 %s/%s", out[0].ID, out[0].Source)
	}
	if out[1].ID != "t2" {
		t.Errorf("第二位期望 t2，实际得到 %s", out[1].ID)
	}
	// 落败来源的观测标签合并到胜出候选上
	if lb, ok := out[0].Labels["genre"]; !ok || lb.Value != "rock" {
		t.Errorf("重复候选的标签应该被合并，实际 Labels=%v", out[0].Labels)
	}
	if lb, ok := out[0].Labels["recall_source"]; !ok || lb.Value != "fav|genre" {
		t.Errorf("recall_source 标签应该累积两个来源，实际 %v", lb)
	}
}

func TestFanout_SourceErrorDegrades(t *testing.T) {
	node := &Fanout{Sources: []Source{
		&stubSource{name: "broken", typ: core.SourceFavoriteArtist, err: errors.New("boom")},
		&stubSource{name: "trending", typ: core.SourceTrending, items: []*core.Item{
			stubItem("hot", core.SourceTrending),
		}},
	}}

	out, err := node.Process(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("单来源出错不应该让整个 fanout 失败: %v", err)
	}
	if len(out) != 1 || out[0].ID != "hot" {
		t.Errorf("期望仅保留正常来源的候选，实际得到 %v", out)
	}
}

func TestFanout_SourceTimeoutDegrades(t *testing.T) {
	node := &Fanout{
		Timeout: 10 * time.Millisecond,
		Sources: []Source{
			&stubSource{name: "slow", typ: core.SourceFavoriteArtist, delay: 200 * time.Millisecond,
				items: []*core.Item{stubItem("late", core.SourceFavoriteArtist)}},
			&stubSource{name: "fast", typ: core.SourceRelatedArtist,
				items: []*core.Item{stubItem("ok", core.SourceRelatedArtist)}},
		},
	}

	out, err := node.Process(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("来源超时不应该让整个 fanout 失败: %v", err)
	}
	if len(out) != 1 || out[0].ID != "ok" {
		t.Errorf("超时来源应该降级为空，实际得到 %v", out)
	}
}

func TestFanout_Empty(t *testing.T) {
	node := &Fanout{}
	out, err := node.Process(context.Background(), nil, nil)
	if err != nil || len(out) != 0 {
		t.Errorf("无来源时应该返回空候选，实际 %v, err=%v", out, err)
	}
}
