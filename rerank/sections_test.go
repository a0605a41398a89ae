package rerank

import (
	"context"
	"testing"

	"github.com/tunekit/tunekit/core"
)

func scoredItem(id string, score float64, reasonType core.ReasonType) *core.Item {
	it := core.NewItem(id, core.TypeTrack)
	it.Score = score
	if reasonType != "" {
		it.Reasons = []core.Reason{{Type: reasonType, Contribution: score}}
	}
	return it
}

func sectionIDs(items []*core.Item) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestAssembleSections_Partition(t *testing.T) {
	items := []*core.Item{
		scoredItem("a1", 50, core.ReasonSameArtist),
		scoredItem("a2", 40, core.ReasonRelatedArtist),
		scoredItem("g1", 30, core.ReasonSameGenre),
		scoredItem("g2", 20, core.ReasonSameTag),
		scoredItem("n1", 0, ""),
	}

	sections := AssembleSections(items, 10)

	// ForYou 是全批次 Top-N，不看来源
	if len(sections.ForYou) != 5 {
		t.Errorf("ForYou 期望 5 个候选，实际得到 %d 个", len(sections.ForYou))
	}
	if got := sectionIDs(sections.BasedOnArtists); len(got) != 2 || got[0] != "a1" || got[1] != "a2" {
		t.Errorf("BasedOnArtists 期望 [a1 a2]，实际得到 %v", got)
	}
	if got := sectionIDs(sections.GenreDiscovery); len(got) != 2 || got[0] != "g1" || got[1] != "g2" {
		t.Errorf("GenreDiscovery 期望 [g1 g2]，实际得到 %v", got)
	}
	// 无理由的候选只进 ForYou
	if len(sections.Trending) != 0 {
		t.Errorf("Trending 应该为空，实际得到 %d 个", len(sections.Trending))
	}
}

func TestAssembleSections_Overlap(t *testing.T) {
	// 同一候选允许同时出现在 ForYou 与主题区块
	items := []*core.Item{scoredItem("a1", 50, core.ReasonSameArtist)}
	sections := AssembleSections(items, 10)

	if len(sections.ForYou) != 1 || len(sections.BasedOnArtists) != 1 {
		t.Errorf("候选应该同时出现在 ForYou 与 BasedOnArtists，实际 %d / %d",
			len(sections.ForYou), len(sections.BasedOnArtists))
	}
	if sections.ForYou[0] != sections.BasedOnArtists[0] {
		t.Errorf("两个区块应该引用同一候选")
	}
}

func TestAssembleSections_Limit(t *testing.T) {
	items := make([]*core.Item, 0, 8)
	for i := 0; i < 8; i++ {
		items = append(items, scoredItem(
			string(rune('a'+i)), float64(80-i*10), core.ReasonSameArtist))
	}

	sections := AssembleSections(items, 3)
	if len(sections.ForYou) != 3 {
		t.Errorf("ForYou 期望截断到 3，实际得到 %d", len(sections.ForYou))
	}
	if len(sections.BasedOnArtists) != 3 {
		t.Errorf("BasedOnArtists 期望截断到 3，实际得到 %d", len(sections.BasedOnArtists))
	}
	// 截断保留分数最高的候选
	if sections.ForYou[0].Score != 80 {
		t.Errorf("期望最高分 80 在首位，实际得到 %v", sections.ForYou[0].Score)
	}
}

func TestAssembleSections_Empty(t *testing.T) {
	sections := AssembleSections(nil, 10)
	if sections == nil {
		t.Fatal("空输入应该产出全空区块，不是 nil")
	}
	if len(sections.ForYou) != 0 || len(sections.BasedOnArtists) != 0 || len(sections.GenreDiscovery) != 0 {
		t.Errorf("空输入的所有区块都应该为空")
	}
}

func TestAssembleSections_TrendingSeparate(t *testing.T) {
	trend := scoredItem("tr1", 60, "")
	trend.Source = core.SourceTrending
	items := []*core.Item{
		trend,
		scoredItem("a1", 50, core.ReasonSameArtist),
	}

	sections := AssembleSections(items, 10)

	// 热门来源只进 Trending，即使分数最高也不挤占 ForYou
	if got := sectionIDs(sections.Trending); len(got) != 1 || got[0] != "tr1" {
		t.Errorf("Trending 期望 [tr1]，实际得到 %v", got)
	}
	if got := sectionIDs(sections.ForYou); len(got) != 1 || got[0] != "a1" {
		t.Errorf("ForYou 期望 [a1]，实际得到 %v", got)
	}
}

func TestAssembleSections_ResortsDefensively(t *testing.T) {
	// 乱序输入也按分数降序产出
	items := []*core.Item{
		scoredItem("low", 10, core.ReasonSameArtist),
		scoredItem("high", 90, core.ReasonSameArtist),
	}
	sections := AssembleSections(items, 10)
	if sections.ForYou[0].ID != "high" {
		t.Errorf("期望 high 在首位，实际得到 %s", sections.ForYou[0].ID)
	}
}

func TestTopNNode(t *testing.T) {
	items := []*core.Item{
		scoredItem("a", 3, ""),
		scoredItem("b", 2, ""),
		scoredItem("c", 1, ""),
	}

	node := &TopNNode{N: 2}
	out, err := node.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("截断失败: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("期望保留 2 个候选，实际得到 %d 个", len(out))
	}

	// N <= 0 返回全部
	all, _ := (&TopNNode{}).Process(context.Background(), nil, items)
	if len(all) != 3 {
		t.Errorf("N<=0 应该返回全部候选，实际得到 %d 个", len(all))
	}
}
