package core

import "context"

// KVStore 是通用键值存储的领域接口，服务于社区统计与热门榜单等旁路数据。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - BatchGet 优先：推荐链路中减少网络往返
//   - 后端不支持某操作时返回 ErrStoreNotSupported
//
// 实现：
//   - store.MemoryStore 实现此接口
//   - store.RedisStore 实现此接口
type KVStore interface {
	// Name 返回存储后端名称（用于观测）
	Name() string

	// Get 读取单个 key 的值
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value，ttl 单位秒（可选）
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// BatchGet 批量读取
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	// ZIncrBy 有序集合成员加分（用于热门榜单累积）
	ZIncrBy(ctx context.Context, key string, delta float64, member string) error

	// ZRange 按分数降序获取有序集合成员（用于 TopN 热门）
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// HSet 写入 Hash 字段（用于物品统计）
	HSet(ctx context.Context, key, field string, value []byte) error

	// HGetAll 读取整个 Hash
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)

	Close() error
}

// KVStore 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleInteraction, ErrorCodeNotFound, "store: key not found")

	// ErrStoreNotSupported 表示操作不支持
	ErrStoreNotSupported = NewDomainError(ModuleInteraction, ErrorCodeInvalidInput, "store: operation not supported")
)
