package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tunekit/tunekit/core"
	"github.com/tunekit/tunekit/pkg/utils"
)

// MemoryCatalog 是内存实现的曲库，用于测试/开发。
// 数据通过 AddArtist / AddItem / SetRelated 预置。
type MemoryCatalog struct {
	mu      sync.RWMutex
	artists map[string]core.Artist
	items   map[string]*core.Item   // key = ItemRef.Key()
	related map[string][]string     // artistID -> related artist IDs
	byOwner map[string][]string     // artistID -> item keys（保持写入顺序）
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		artists: make(map[string]core.Artist),
		items:   make(map[string]*core.Item),
		related: make(map[string][]string),
		byOwner: make(map[string][]string),
	}
}

func (m *MemoryCatalog) Name() string { return "memory" }

// AddArtist 预置歌手元信息。
func (m *MemoryCatalog) AddArtist(a core.Artist) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artists[a.ID] = a
}

// AddItem 预置单曲/专辑，并登记到所属歌手名下。
func (m *MemoryCatalog) AddItem(item *core.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := item.Key()
	if _, exists := m.items[key]; !exists && item.ArtistID != "" {
		m.byOwner[item.ArtistID] = append(m.byOwner[item.ArtistID], key)
	}
	m.items[key] = item
}

// SetRelated 预置相似歌手关系（单向）。
func (m *MemoryCatalog) SetRelated(artistID string, relatedIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.related[artistID] = relatedIDs
}

func (m *MemoryCatalog) Artists(ctx context.Context, ids []string) ([]core.Artist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Artist, 0, len(ids))
	for _, id := range ids {
		if a, ok := m.artists[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryCatalog) ArtistTopItems(ctx context.Context, artistID string, limit int) ([]*core.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := m.byOwner[artistID]
	out := make([]*core.Item, 0, len(keys))
	for _, k := range keys {
		if item, ok := m.items[k]; ok {
			out = append(out, cloneItem(item))
		}
	}
	// 按曲库热度降序，保持预置顺序的稳定性
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Popularity > out[j].Popularity
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryCatalog) RelatedArtists(ctx context.Context, artistID string) ([]core.Artist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.related[artistID]
	out := make([]core.Artist, 0, len(ids))
	for _, id := range ids {
		if a, ok := m.artists[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryCatalog) SearchByGenre(ctx context.Context, genre string, limit int) ([]*core.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	target := strings.ToLower(genre)
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []*core.Item
	for _, k := range keys {
		item := m.items[k]
		for _, g := range item.Genres {
			if strings.ToLower(g) == target {
				out = append(out, cloneItem(item))
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Popularity > out[j].Popularity
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryCatalog) Items(ctx context.Context, refs []core.ItemRef) ([]*core.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*core.Item, 0, len(refs))
	for _, ref := range refs {
		if item, ok := m.items[ref.Key()]; ok {
			out = append(out, cloneItem(item))
		}
	}
	return out, nil
}

// cloneItem 返回浅拷贝，避免调用方修改预置数据
func cloneItem(src *core.Item) *core.Item {
	dst := *src
	dst.Genres = append([]string(nil), src.Genres...)
	dst.Reasons = nil
	dst.Labels = make(map[string]utils.Label)
	dst.Meta = make(map[string]any)
	return &dst
}

// 确保 MemoryCatalog 实现了 core.CatalogService 接口
var _ core.CatalogService = (*MemoryCatalog)(nil)
