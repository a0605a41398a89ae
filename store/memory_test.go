package store

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/tunekit/tunekit/core"
)

func TestMemoryStore_Interactions(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	ctx := context.Background()

	ms.AddFavoriteArtist("u1", "artist_a")
	ms.AddFavoriteArtist("u1", "artist_b")
	ms.AddFavoriteArtist("u1", "artist_a") // 重复收藏

	ids, err := ms.FavoriteArtistIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("读取收藏歌手失败: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("期望 2 个收藏歌手，实际得到 %d 个", len(ids))
	}

	ms.AddFavorite("u1", core.Favorite{
		ItemRef:   core.ItemRef{ID: "t1", Type: core.TypeTrack},
		ArtistIDs: []string{"artist_a"},
	})
	ms.AddFavorite("u1", core.Favorite{
		ItemRef: core.ItemRef{ID: "t1", Type: core.TypeTrack},
	})

	favs, err := ms.Favorites(ctx, "u1")
	if err != nil {
		t.Fatalf("读取收藏失败: %v", err)
	}
	if len(favs) != 1 {
		t.Errorf("期望按 (id, type) 去重后 1 条收藏，实际得到 %d 条", len(favs))
	}

	ms.SetRating("u1", core.Rating{ItemRef: core.ItemRef{ID: "t1", Type: core.TypeTrack}, Value: 3})
	ms.SetRating("u1", core.Rating{ItemRef: core.ItemRef{ID: "t1", Type: core.TypeTrack}, Value: 5})

	ratings, err := ms.Ratings(ctx, "u1")
	if err != nil {
		t.Fatalf("读取评分失败: %v", err)
	}
	if len(ratings) != 1 {
		t.Fatalf("期望后写覆盖后 1 条评分，实际得到 %d 条", len(ratings))
	}
	if ratings[0].Value != 5 {
		t.Errorf("期望评分 5，实际得到 %v", ratings[0].Value)
	}

	ms.AddTag("u1", "chill")
	ms.AddTag("u1", "workout")
	tags, err := ms.Tags(ctx, "u1")
	if err != nil {
		t.Fatalf("读取标签失败: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("期望 2 个标签，实际得到 %d 个", len(tags))
	}
}

func TestMemoryStore_EmptyUser(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	ctx := context.Background()

	// 空用户返回空数据而非错误
	if ids, err := ms.FavoriteArtistIDs(ctx, "nobody"); err != nil || len(ids) != 0 {
		t.Errorf("空用户应该返回空切片，实际得到 %v, err=%v", ids, err)
	}
	if favs, err := ms.Favorites(ctx, "nobody"); err != nil || len(favs) != 0 {
		t.Errorf("空用户应该返回空切片，实际得到 %v, err=%v", favs, err)
	}
	if ratings, err := ms.Ratings(ctx, "nobody"); err != nil || len(ratings) != 0 {
		t.Errorf("空用户应该返回空切片，实际得到 %v, err=%v", ratings, err)
	}
	if tags, err := ms.Tags(ctx, "nobody"); err != nil || len(tags) != 0 {
		t.Errorf("空用户应该返回空切片，实际得到 %v, err=%v", tags, err)
	}
}

func TestMemoryStore_KV(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	ctx := context.Background()

	if err := ms.Set(ctx, "k1", []byte("v1")); err != nil {
		t.Fatalf("Set 失败: %v", err)
	}
	val, err := ms.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if string(val) != "v1" {
		t.Errorf("期望 v1，实际得到 %s", val)
	}

	if _, err := ms.Get(ctx, "missing"); !core.IsNotFound(err) {
		t.Errorf("缺失的 key 应该返回 NOT_FOUND 错误，实际得到 %v", err)
	}

	ms.Set(ctx, "k2", []byte("v2"))
	batch, err := ms.BatchGet(ctx, []string{"k1", "k2", "missing"})
	if err != nil {
		t.Fatalf("BatchGet 失败: %v", err)
	}
	if len(batch) != 2 {
		t.Errorf("期望批量命中 2 个 key，实际得到 %d 个", len(batch))
	}
}

func TestMemoryStore_ZSet(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	ctx := context.Background()

	ms.ZIncrBy(ctx, "trending:items", 3, "track:a")
	ms.ZIncrBy(ctx, "trending:items", 1, "track:b")
	ms.ZIncrBy(ctx, "trending:items", 2, "track:b") // 累积到 3，与 track:a 同分
	ms.ZIncrBy(ctx, "trending:items", 5, "track:c")

	members, err := ms.ZRange(ctx, "trending:items", 0, -1)
	if err != nil {
		t.Fatalf("ZRange 失败: %v", err)
	}
	want := []string{"track:c", "track:a", "track:b"}
	if len(members) != len(want) {
		t.Fatalf("期望 %d 个成员，实际得到 %d 个", len(want), len(members))
	}
	for i := range want {
		if members[i] != want[i] {
			t.Errorf("位置 %d: 期望 %s，实际得到 %s", i, want[i], members[i])
		}
	}

	// 范围截取
	top1, err := ms.ZRange(ctx, "trending:items", 0, 0)
	if err != nil {
		t.Fatalf("ZRange 失败: %v", err)
	}
	if len(top1) != 1 || top1[0] != "track:c" {
		t.Errorf("期望 top1 为 track:c，实际得到 %v", top1)
	}
}

func TestMemoryStore_Hash(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	ctx := context.Background()

	ms.HSet(ctx, "stats:items", "track:a", []byte(`{"community_rating":4.5}`))
	ms.HSet(ctx, "stats:items", "album:b", []byte(`{"community_rating":3.0}`))

	all, err := ms.HGetAll(ctx, "stats:items")
	if err != nil {
		t.Fatalf("HGetAll 失败: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("期望 2 个字段，实际得到 %d 个", len(all))
	}
	if string(all["track:a"]) != `{"community_rating":4.5}` {
		t.Errorf("字段值不匹配: %s", all["track:a"])
	}
}

func TestMemoryStore_RemoveFavoriteAndRecordPlay(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()

	ref := core.ItemRef{ID: "t1", Type: core.TypeTrack}
	ms.AddFavorite("u1", core.Favorite{ItemRef: ref})
	ms.RemoveFavorite("u1", ref)
	// 不存在的条目再删一次是 no-op
	ms.RemoveFavorite("u1", ref)

	favs, err := ms.Favorites(context.Background(), "u1")
	if err != nil || len(favs) != 0 {
		t.Errorf("取消收藏后应该为空，实际 %v, err=%v", favs, err)
	}

	ctx := context.Background()
	ms.RecordPlay(ctx, "trending:items", ref)
	ms.RecordPlay(ctx, "trending:items", ref)
	members, err := ms.ZRange(ctx, "trending:items", 0, -1)
	if err != nil || len(members) != 1 || members[0] != "track:t1" {
		t.Errorf("播放记录应该累积到热门榜单，实际 %v, err=%v", members, err)
	}
}

func TestMemoryStore_CloseStopsCleanup(t *testing.T) {
	baseline := runtime.NumGoroutine()

	stores := make([]*MemoryStore, 0, 20)
	for i := 0; i < 20; i++ {
		stores = append(stores, NewMemoryStore())
	}
	if runtime.NumGoroutine() < baseline+20 {
		t.Fatalf("每个 store 应该有一个清理 goroutine")
	}

	for _, ms := range stores {
		ms.Close()
		// 重复 Close 是 no-op，不 panic
		ms.Close()
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= baseline+2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("Close 后清理 goroutine 应该退出，剩余 %d（基线 %d）", runtime.NumGoroutine(), baseline)
}
