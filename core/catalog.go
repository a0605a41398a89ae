package core

import "context"

// Artist 是曲库中的歌手元信息。
type Artist struct {
	ID         string
	Name       string
	Genres     []string
	Popularity int
	ImageURL   string
}

// CatalogService 是流媒体曲库的领域接口。
//
// 设计原则：
//   - 批量接口优先（Artists / Items），避免逐 ID 循环调用触发限流
//   - 部分失败返回部分结果：查不到的 ID 静默省略，不让整批报错
//   - 单个调用失败属于 CatalogLookupFailed，调用方局部降级为空，不上抛致命错误
//
// 实现：
//   - catalog.SpotifyCatalog 实现此接口（Spotify Web API）
//   - catalog.MemoryCatalog 实现此接口（测试/开发）
type CatalogService interface {
	// Name 返回曲库后端名称（用于观测）
	Name() string

	// Artists 批量获取歌手元信息；缺失 ID 静默省略
	Artists(ctx context.Context, ids []string) ([]Artist, error)

	// ArtistTopItems 获取歌手的热门单曲/专辑，按曲库热度降序
	ArtistTopItems(ctx context.Context, artistID string, limit int) ([]*Item, error)

	// RelatedArtists 获取相似歌手
	RelatedArtists(ctx context.Context, artistID string) ([]Artist, error)

	// SearchByGenre 按流派搜索单曲/专辑
	SearchByGenre(ctx context.Context, genre string, limit int) ([]*Item, error)

	// Items 批量补全 (id,type) 对应的元信息；缺失条目静默省略
	Items(ctx context.Context, refs []ItemRef) ([]*Item, error)
}

// ItemStats 是单个物品的社区统计。
type ItemStats struct {
	CommunityRating float64 // 社区均分，0 表示未知
	Popularity      int     // 热度，0 表示未知
}

// CommunityStatsService 是社区统计的领域接口，community_rating 规则的数据来源。
//
// 实现：
//   - feast.CommunityStats（Feast 在线特征）
//   - feature.StoreStats（KV 存储 Hash）
//   - feature.StaticStats（测试）
type CommunityStatsService interface {
	// Name 返回服务名称（用于观测）
	Name() string

	// BatchItemStats 批量获取物品统计，key 为 ItemRef.Key()；缺失条目省略
	BatchItemStats(ctx context.Context, refs []ItemRef) (map[string]ItemStats, error)

	// Close 释放资源
	Close() error
}
