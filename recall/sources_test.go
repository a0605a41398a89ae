package recall

import (
	"context"
	"fmt"
	"testing"

	"github.com/tunekit/tunekit/catalog"
	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/store"
)

func contextWithPrefs(prefs *core.UserPreferences) *core.RecommendContext {
	return &core.RecommendContext{UserID: prefs.UserID, Prefs: prefs}
}

func addTracks(cat *catalog.MemoryCatalog, artistID, artistName, genre string, n, basePopularity int) {
	for i := 1; i <= n; i++ {
		it := core.NewItem(fmt.Sprintf("%s_t%d", artistID, i), core.TypeTrack)
		it.Name = fmt.Sprintf("%s Song %d", artistName, i)
		it.ArtistID = artistID
		it.ArtistName = artistName
		it.Genres = []string{genre}
		it.Popularity = basePopularity - i
		cat.AddItem(it)
	}
}

func TestFavoriteArtist_Recall(t *testing.T) {
	cat := catalog.NewMemoryCatalog()
	cat.AddArtist(core.Artist{ID: "a1", Name: "Alpha", Genres: []string{"rock"}})
	cat.AddArtist(core.Artist{ID: "a2", Name: "Beta", Genres: []string{"jazz"}})
	addTracks(cat, "a1", "Alpha", "rock", 3, 90)
	addTracks(cat, "a2", "Beta", "jazz", 3, 80)

	prefs := core.NewUserPreferences("u1")
	prefs.ArtistIDs["a1"] = true
	prefs.ArtistIDs["a2"] = true

	src := &FavoriteArtist{Catalog: cat, Limit: 4}
	items, err := src.Recall(context.Background(), contextWithPrefs(prefs))
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}

	if len(items) != 4 {
		t.Fatalf("期望截断到 4 个候选，实际得到 %d 个", len(items))
	}
	// 按曲库热度降序：Alpha 的条目（popularity 89,88,87）在 Beta（79,78,77）之前
	if items[0].ArtistID != "a1" || items[0].Popularity != 89 {
		t.Errorf("首位期望 a1 的最热条目，实际得到 %s popularity=%d", items[0].ArtistID, items[0].Popularity)
	}
	for _, it := range items {
		if it.Source != core.SourceFavoriteArtist {
			t.Errorf("候选来源应该是 favorite_artist，实际得到 %s", it.Source)
		}
		if it.SourceArtistID == "" {
			t.Errorf("候选应该记录来源歌手")
		}
	}
}

func TestFavoriteArtist_EmptyPrefs(t *testing.T) {
	src := &FavoriteArtist{Catalog: catalog.NewMemoryCatalog()}
	items, err := src.Recall(context.Background(), contextWithPrefs(core.NewUserPreferences("u1")))
	if err != nil || len(items) != 0 {
		t.Errorf("无收藏歌手时应该返回空候选，实际 %v, err=%v", items, err)
	}
}

func TestRelatedArtist_ExcludesFavorited(t *testing.T) {
	cat := catalog.NewMemoryCatalog()
	cat.AddArtist(core.Artist{ID: "a1", Name: "Alpha"})
	cat.AddArtist(core.Artist{ID: "a2", Name: "Beta"})
	cat.AddArtist(core.Artist{ID: "a3", Name: "Gamma"})
	// a1 的相似歌手包含已收藏的 a2 与新歌手 a3
	cat.SetRelated("a1", "a2", "a3")
	addTracks(cat, "a2", "Beta", "jazz", 2, 80)
	addTracks(cat, "a3", "Gamma", "funk", 2, 70)

	prefs := core.NewUserPreferences("u1")
	prefs.ArtistIDs["a1"] = true
	prefs.ArtistIDs["a2"] = true

	src := &RelatedArtist{Catalog: cat}
	items, err := src.Recall(context.Background(), contextWithPrefs(prefs))
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}

	for _, it := range items {
		if it.ArtistID == "a2" {
			t.Errorf("已收藏歌手的条目不应该出现在相似歌手候选中")
		}
		if it.Source != core.SourceRelatedArtist {
			t.Errorf("候选来源应该是 related_artist，实际得到 %s", it.Source)
		}
	}
	if len(items) != 2 {
		t.Errorf("期望 2 个来自 a3 的候选，实际得到 %d 个", len(items))
	}
}

func TestGenreDiscovery_ThresholdAndFreshness(t *testing.T) {
	cat := catalog.NewMemoryCatalog()
	cat.AddArtist(core.Artist{ID: "a_fav", Name: "Known"})
	cat.AddArtist(core.Artist{ID: "a_new", Name: "Fresh"})
	// 已收藏歌手的 rock 条目更热，但新歌手的条目应该排在前面
	addTracks(cat, "a_fav", "Known", "rock", 1, 100)
	addTracks(cat, "a_new", "Fresh", "rock", 1, 50)
	addTracks(cat, "a_new", "Fresh", "ambient", 1, 40)

	prefs := core.NewUserPreferences("u1")
	prefs.ArtistIDs["a_fav"] = true
	prefs.GenreWeights["rock"] = 1.0
	prefs.GenreWeights["ambient"] = 0.1 // 低于阈值 0.2，不参与发现

	src := &GenreDiscovery{Catalog: cat}
	items, err := src.Recall(context.Background(), contextWithPrefs(prefs))
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("ambient 不应该参与发现，期望 2 个候选，实际得到 %d 个", len(items))
	}
	if items[0].ArtistID != "a_new" {
		t.Errorf("未收藏歌手的条目应该排在前面，实际首位是 %s", items[0].ArtistID)
	}
}

func TestTrending_FromZSet(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()

	ctx := context.Background()
	ms.ZIncrBy(ctx, "trending:items", 9, "track:hot1")
	ms.ZIncrBy(ctx, "trending:items", 5, "album:hot2")
	ms.ZIncrBy(ctx, "trending:items", 1, "bogus")

	src := &Trending{Store: ms, Key: "trending:items"}
	items, err := src.Recall(ctx, nil)
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("非法成员应该被跳过，期望 2 个候选，实际得到 %d 个", len(items))
	}
	if items[0].ID != "hot1" || items[0].Type != core.TypeTrack {
		t.Errorf("首位期望 track:hot1，实际得到 %s:%s", items[0].Type, items[0].ID)
	}
	if items[1].Type != core.TypeAlbum {
		t.Errorf("第二位期望专辑类型，实际得到 %s", items[1].Type)
	}
}

func TestTrending_FallbackKeys(t *testing.T) {
	src := &Trending{Keys: []string{"track:k1", "track:k2"}, Limit: 1}
	items, err := src.Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("召回失败: %v", err)
	}
	if len(items) != 1 || items[0].ID != "k1" {
		t.Errorf("期望内存 fallback 截断到 [k1]，实际得到 %v", items)
	}
	if items[0].Source != core.SourceTrending {
		t.Errorf("候选来源应该是 trending")
	}
}
