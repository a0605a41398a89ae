package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tunekit/tunekit/core"
)

// Redis key 布局：
//
//	user:{id}:fav_artists  SET   收藏的歌手 ID
//	user:{id}:favorites    HASH  field=ItemRef.Key() value=JSON(core.Favorite)
//	user:{id}:ratings      HASH  field=ItemRef.Key() value=JSON(core.Rating)
//	user:{id}:tags         SET   自由文本标签
//	trending:items         ZSET  热门榜单（member=ItemRef.Key()）
const (
	keyFavArtists = "user:%s:fav_artists"
	keyFavorites  = "user:%s:favorites"
	keyRatings    = "user:%s:ratings"
	keyTags       = "user:%s:tags"
)

// RedisStore 是 Redis 实现的存储，生产环境常用。
// 同时实现 core.InteractionStore 与 core.KVStore。
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %v: %w", addr, err, core.ErrInteractionUnavailable)
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient 复用宿主应用已有的客户端（连接池共享）。
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Name() string { return "redis" }

// ---- core.InteractionStore ----

func (r *RedisStore) FavoriteArtistIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, fmt.Sprintf(keyFavArtists, userID)).Result()
	if err != nil {
		return nil, interactionErr("favorite artists", err)
	}
	// SMembers 返回顺序不稳定，排序保证确定性
	sort.Strings(ids)
	return ids, nil
}

func (r *RedisStore) Favorites(ctx context.Context, userID string) ([]core.Favorite, error) {
	vals, err := r.client.HGetAll(ctx, fmt.Sprintf(keyFavorites, userID)).Result()
	if err != nil {
		return nil, interactionErr("favorites", err)
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]core.Favorite, 0, len(keys))
	for _, k := range keys {
		var fav core.Favorite
		if err := json.Unmarshal([]byte(vals[k]), &fav); err != nil {
			// 脏数据跳过，不中断整个请求
			continue
		}
		out = append(out, fav)
	}
	return out, nil
}

func (r *RedisStore) Ratings(ctx context.Context, userID string) ([]core.Rating, error) {
	vals, err := r.client.HGetAll(ctx, fmt.Sprintf(keyRatings, userID)).Result()
	if err != nil {
		return nil, interactionErr("ratings", err)
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]core.Rating, 0, len(keys))
	for _, k := range keys {
		var rating core.Rating
		if err := json.Unmarshal([]byte(vals[k]), &rating); err != nil {
			continue
		}
		out = append(out, rating)
	}
	return out, nil
}

func (r *RedisStore) Tags(ctx context.Context, userID string) ([]string, error) {
	tags, err := r.client.SMembers(ctx, fmt.Sprintf(keyTags, userID)).Result()
	if err != nil {
		return nil, interactionErr("tags", err)
	}
	sort.Strings(tags)
	return tags, nil
}

// ---- 写辅助方法（引擎只读，写入由宿主应用调用）----

func (r *RedisStore) AddFavoriteArtist(ctx context.Context, userID, artistID string) error {
	return r.client.SAdd(ctx, fmt.Sprintf(keyFavArtists, userID), artistID).Err()
}

func (r *RedisStore) AddFavorite(ctx context.Context, userID string, fav core.Favorite) error {
	data, err := json.Marshal(fav)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, fmt.Sprintf(keyFavorites, userID), fav.Key(), data).Err()
}

func (r *RedisStore) SetRating(ctx context.Context, userID string, rating core.Rating) error {
	data, err := json.Marshal(rating)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, fmt.Sprintf(keyRatings, userID), rating.Key(), data).Err()
}

func (r *RedisStore) RemoveFavorite(ctx context.Context, userID string, ref core.ItemRef) error {
	return r.client.HDel(ctx, fmt.Sprintf(keyFavorites, userID), ref.Key()).Err()
}

// RecordPlay 记录一次播放，为热门榜单累积热度。
func (r *RedisStore) RecordPlay(ctx context.Context, trendingKey string, ref core.ItemRef) error {
	return r.client.ZIncrBy(ctx, trendingKey, 1, ref.Key()).Err()
}

func (r *RedisStore) AddTag(ctx context.Context, userID, tag string) error {
	return r.client.SAdd(ctx, fmt.Sprintf(keyTags, userID), tag).Err()
}

// ---- core.KVStore ----

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrStoreNotFound
	}
	return val, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return make(map[string][]byte), nil
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(keys))
	for i, k := range keys {
		if vals[i] != nil {
			if s, ok := vals[i].(string); ok {
				result[k] = []byte(s)
			}
		}
	}
	return result, nil
}

func (r *RedisStore) ZIncrBy(ctx context.Context, key string, delta float64, member string) error {
	return r.client.ZIncrBy(ctx, key, delta, member).Err()
}

func (r *RedisStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.client.ZRevRange(ctx, key, start, stop).Result()
}

func (r *RedisStore) HSet(ctx context.Context, key, field string, value []byte) error {
	return r.client.HSet(ctx, key, field, value).Err()
}

func (r *RedisStore) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	vals, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte, len(vals))
	for k, v := range vals {
		result[k] = []byte(v)
	}
	return result, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// interactionErr 包装交互数据读取错误，调用方用 core.IsUnavailable 判断
func interactionErr(op string, err error) error {
	return fmt.Errorf("redis %s: %v: %w", op, err, core.ErrInteractionUnavailable)
}

// 确保 RedisStore 实现了 core.InteractionStore 和 core.KVStore 接口
var _ core.InteractionStore = (*RedisStore)(nil)
var _ core.KVStore = (*RedisStore)(nil)
