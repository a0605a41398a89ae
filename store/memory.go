package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tunekit/tunekit/core"
)

// MemoryStore 是内存实现的存储，用于测试/开发/原型。
// 同时实现 core.InteractionStore（用户交互数据）与 core.KVStore（旁路数据）。
// 支持 TTL（过期时间），但进程重启后数据丢失。
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]*entry
	ttl   map[string]time.Time
	zsets map[string]map[string]float64 // zset key -> member -> score
	clean *time.Ticker
	stop  chan struct{}

	closeOnce sync.Once

	// 用户交互数据
	favArtists map[string][]string              // userID -> 收藏的歌手 ID（保持写入顺序）
	favorites  map[string][]core.Favorite       // userID -> 收藏的单曲/专辑
	ratings    map[string]map[string]core.Rating // userID -> ref key -> 评分（后写覆盖）
	tags       map[string][]string              // userID -> 标签（保持写入顺序）
}

type entry struct {
	value []byte
	ttl   *time.Time
}

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		data:       make(map[string]*entry),
		ttl:        make(map[string]time.Time),
		zsets:      make(map[string]map[string]float64),
		clean:      time.NewTicker(10 * time.Second),
		stop:       make(chan struct{}),
		favArtists: make(map[string][]string),
		favorites:  make(map[string][]core.Favorite),
		ratings:    make(map[string]map[string]core.Rating),
		tags:       make(map[string][]string),
	}
	go ms.cleanup()
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

// ---- core.InteractionStore ----

func (m *MemoryStore) FavoriteArtistIDs(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.favArtists[userID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *MemoryStore) Favorites(ctx context.Context, userID string) ([]core.Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	favs := m.favorites[userID]
	out := make([]core.Favorite, len(favs))
	copy(out, favs)
	return out, nil
}

func (m *MemoryStore) Ratings(ctx context.Context, userID string) ([]core.Rating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byKey := m.ratings[userID]
	if len(byKey) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]core.Rating, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out, nil
}

func (m *MemoryStore) Tags(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ts := m.tags[userID]
	out := make([]string, len(ts))
	copy(out, ts)
	return out, nil
}

// ---- 写辅助方法（引擎只读，写入由宿主应用调用）----

// AddFavoriteArtist 记录用户收藏的歌手，重复收藏不产生重复记录。
func (m *MemoryStore) AddFavoriteArtist(userID, artistID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.favArtists[userID] {
		if id == artistID {
			return
		}
	}
	m.favArtists[userID] = append(m.favArtists[userID], artistID)
}

// AddFavorite 记录用户收藏的单曲/专辑，按 (id, type) 去重。
func (m *MemoryStore) AddFavorite(userID string, fav core.Favorite) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, f := range m.favorites[userID] {
		if f.Key() == fav.Key() {
			return
		}
	}
	m.favorites[userID] = append(m.favorites[userID], fav)
}

// SetRating 记录用户评分，同一 (id, type) 后写覆盖。
func (m *MemoryStore) SetRating(userID string, r core.Rating) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ratings[userID] == nil {
		m.ratings[userID] = make(map[string]core.Rating)
	}
	m.ratings[userID][r.Key()] = r
}

// RemoveFavorite 取消收藏，条目不存在时是 no-op。
func (m *MemoryStore) RemoveFavorite(userID string, ref core.ItemRef) {
	m.mu.Lock()
	defer m.mu.Unlock()

	favs := m.favorites[userID]
	for i, f := range favs {
		if f.Key() == ref.Key() {
			m.favorites[userID] = append(favs[:i], favs[i+1:]...)
			return
		}
	}
}

// RecordPlay 记录一次播放，为热门榜单累积热度。
func (m *MemoryStore) RecordPlay(ctx context.Context, trendingKey string, ref core.ItemRef) error {
	return m.ZIncrBy(ctx, trendingKey, 1, ref.Key())
}

// AddTag 记录用户标签，重复标签不产生重复记录。
func (m *MemoryStore) AddTag(userID, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tags[userID] {
		if t == tag {
			return
		}
	}
	m.tags[userID] = append(m.tags[userID], tag)
}

// ---- core.KVStore ----

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	if e.ttl != nil && time.Now().After(*e.ttl) {
		return nil, core.ErrStoreNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{value: value}
	if len(ttl) > 0 && ttl[0] > 0 {
		expire := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		e.ttl = &expire
		m.ttl[key] = expire
	}
	m.data[key] = e
	return nil
}

func (m *MemoryStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	now := time.Now()
	for _, k := range keys {
		e, ok := m.data[k]
		if !ok {
			continue
		}
		if e.ttl != nil && now.After(*e.ttl) {
			continue
		}
		result[k] = e.value
	}
	return result, nil
}

func (m *MemoryStore) ZIncrBy(ctx context.Context, key string, delta float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]float64)
	}
	m.zsets[key][member] += delta
	return nil
}

func (m *MemoryStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok || len(zset) == 0 {
		return nil, nil
	}

	// 转换为 slice 并按 score 降序排序，同分按成员名升序保证确定性
	type pair struct {
		member string
		score  float64
	}
	pairs := make([]pair, 0, len(zset))
	for mem, s := range zset {
		pairs = append(pairs, pair{member: mem, score: s})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].member < pairs[j].member
	})

	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= int64(len(pairs)) {
		stop = int64(len(pairs)) - 1
	}
	if start > stop {
		return nil, nil
	}

	result := make([]string, 0, stop-start+1)
	for i := start; i <= stop && i < int64(len(pairs)); i++ {
		result = append(result, pairs[i].member)
	}
	return result, nil
}

func (m *MemoryStore) HSet(ctx context.Context, key, field string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hkey := "hash:" + key + ":" + field
	m.data[hkey] = &entry{value: value}
	return nil
}

func (m *MemoryStore) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := "hash:" + key + ":"
	result := make(map[string][]byte)
	now := time.Now()
	for k, e := range m.data {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			if e.ttl != nil && now.After(*e.ttl) {
				continue
			}
			field := k[len(prefix):]
			result[field] = e.value
		}
	}
	return result, nil
}

// Close 停止后台清理。重复 Close 是 no-op。
func (m *MemoryStore) Close() error {
	m.closeOnce.Do(func() {
		m.clean.Stop()
		close(m.stop)
	})
	return nil
}

// cleanup 周期清理过期 key。Ticker.Stop 不会关闭通道，靠 stop 信号退出。
func (m *MemoryStore) cleanup() {
	for {
		select {
		case <-m.stop:
			return
		case <-m.clean.C:
		}
		m.mu.Lock()
		now := time.Now()
		for k, expire := range m.ttl {
			if now.After(expire) {
				delete(m.data, k)
				delete(m.ttl, k)
			}
		}
		m.mu.Unlock()
	}
}

var (
	_ core.InteractionStore = (*MemoryStore)(nil)
	_ core.KVStore          = (*MemoryStore)(nil)
)
