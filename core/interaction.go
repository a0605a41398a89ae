package core

import "context"

// Favorite 是一条收藏记录。ArtistIDs 是收藏物品归属的歌手（可为空，由曲库补全）。
type Favorite struct {
	ItemRef
	ArtistIDs []string
}

// Rating 是一条个人评分记录（1-5 数值刻度）。
type Rating struct {
	ItemRef
	Value float64
}

// InteractionStore 是用户交互数据的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 引擎只读；写入是宿主应用的事情（实现可以额外提供写方法）
//
// 错误约定：
//   - 后端不可达时返回包装了 ErrInteractionUnavailable 的错误（请求级致命）
//   - 用户没有任何数据不是错误，返回空切片
//
// 实现：
//   - store.MemoryStore 实现此接口（测试/开发）
//   - store.RedisStore 实现此接口（生产）
type InteractionStore interface {
	// Name 返回存储后端名称（用于观测）
	Name() string

	// FavoriteArtistIDs 获取用户直接收藏的歌手 ID 列表
	FavoriteArtistIDs(ctx context.Context, userID string) ([]string, error)

	// Favorites 获取用户收藏的单曲/专辑
	Favorites(ctx context.Context, userID string) ([]Favorite, error)

	// Ratings 获取用户的全部个人评分
	Ratings(ctx context.Context, userID string) ([]Rating, error)

	// Tags 获取用户打过的全部自由文本标签（未归一化，原样返回）
	Tags(ctx context.Context, userID string) ([]string, error)

	// Close 关闭连接/释放资源
	Close() error
}
