package builders

import (
	"strings"
	"testing"

	"github.com/tunekit/tunekit/catalog"
	"github.com/tunekit/tunekit/config"
	"github.com/tunekit/tunekit/pipeline"
	"github.com/tunekit/tunekit/rank"
	"github.com/tunekit/tunekit/recall"
	"github.com/tunekit/tunekit/rerank"
	"github.com/tunekit/tunekit/store"
)

func installTestDeps(t *testing.T) {
	t.Helper()
	ms := store.NewMemoryStore()
	t.Cleanup(func() { ms.Close() })
	Install(Deps{Catalog: catalog.NewMemoryCatalog(), KV: ms})
}

func TestInstall_RegistersAllTypes(t *testing.T) {
	installTestDeps(t)

	types := config.SupportedTypes()
	for _, want := range []string{"recall.fanout", "rank.score", "rerank.topn", "filter", "feature.enrich"} {
		found := false
		for _, typ := range types {
			if typ == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Install 后应该注册 %s，实际注册表 %v", want, types)
		}
	}
}

func TestBuildFanoutNode(t *testing.T) {
	installTestDeps(t)
	factory := config.DefaultFactory()

	node, err := factory.Build("recall.fanout", map[string]interface{}{
		"timeout":        2,
		"max_concurrent": 3,
		"sources": []interface{}{
			map[string]interface{}{"type": "favorite_artist", "limit": 10},
			map[string]interface{}{"type": "related_artist", "per_artist": 3},
			map[string]interface{}{"type": "genre_discovery", "min_weight": 0.5},
			map[string]interface{}{"type": "trending", "key": "trending:items"},
		},
	})
	if err != nil {
		t.Fatalf("构建 fanout 失败: %v", err)
	}

	fanout, ok := node.(*recall.Fanout)
	if !ok {
		t.Fatalf("期望 *recall.Fanout，实际 %T", node)
	}
	if len(fanout.Sources) != 4 {
		t.Fatalf("期望 4 个来源，实际 %d 个", len(fanout.Sources))
	}
	if fanout.MaxConcurrent != 3 {
		t.Errorf("max_concurrent 期望 3，实际 %d", fanout.MaxConcurrent)
	}
	if gd, ok := fanout.Sources[2].(*recall.GenreDiscovery); !ok || gd.MinWeight != 0.5 {
		t.Errorf("genre_discovery 的 min_weight 应该是 0.5")
	}
}

func TestBuildFanoutNode_UnknownSource(t *testing.T) {
	installTestDeps(t)
	factory := config.DefaultFactory()

	_, err := factory.Build("recall.fanout", map[string]interface{}{
		"sources": []interface{}{
			map[string]interface{}{"type": "astrology"},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "unknown source type") {
		t.Errorf("未知来源类型应该报错，实际 %v", err)
	}
}

func TestBuildScoreNode_Weights(t *testing.T) {
	node, err := BuildScoreNode(map[string]interface{}{
		"weights": map[string]interface{}{
			"same_artist_base": 50.0,
		},
	})
	if err != nil {
		t.Fatalf("构建 score 失败: %v", err)
	}
	score := node.(*rank.ScoreNode)
	if score.Weights == nil || score.Weights.SameArtistBase != 50 {
		t.Errorf("same_artist_base 期望 50，实际 %+v", score.Weights)
	}
	// 权重整体替换，未指定字段不与默认值合并
	if score.Weights.SameGenreBase != 0 {
		t.Errorf("same_genre_base 期望 0（整体替换），实际 %v", score.Weights.SameGenreBase)
	}
	if score.Weights.AlreadyFavoritedPenalty != 0 {
		t.Errorf("already_favorited_penalty 期望 0（整体替换），实际 %v", score.Weights.AlreadyFavoritedPenalty)
	}
}

func TestBuildScoreNode_NoWeights(t *testing.T) {
	node, err := BuildScoreNode(map[string]interface{}{})
	if err != nil {
		t.Fatalf("构建 score 失败: %v", err)
	}
	if score := node.(*rank.ScoreNode); score.Weights != nil {
		t.Errorf("没有 weights 块时应该保持 nil，走请求权重")
	}
}

func TestBuildTopNNode(t *testing.T) {
	node, err := BuildTopNNode(map[string]interface{}{"n": 5})
	if err != nil {
		t.Fatalf("构建 topn 失败: %v", err)
	}
	if topn := node.(*rerank.TopNNode); topn.N != 5 {
		t.Errorf("N 期望 5，实际 %d", topn.N)
	}
}

func TestBuildFilterNode_ExprRequired(t *testing.T) {
	installTestDeps(t)
	factory := config.DefaultFactory()

	_, err := factory.Build("filter", map[string]interface{}{
		"filters": []interface{}{
			map[string]interface{}{"type": "expression"},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "expr is required") {
		t.Errorf("缺少 expr 应该报错，实际 %v", err)
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	installTestDeps(t)

	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "recall.fanout"},
		{Type: "rank.score"},
	}
	if err := config.ValidatePipelineConfig(cfg); err != nil {
		t.Errorf("全部类型已注册时校验应该通过: %v", err)
	}

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{Type: "made.up"})
	err := config.ValidatePipelineConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "made.up") {
		t.Errorf("未注册类型应该校验失败并带上类型名，实际 %v", err)
	}
}
