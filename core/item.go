package core

import "github.com/tunekit/tunekit/pkg/utils"

// ItemType 是候选物品的类型：单曲或专辑。
type ItemType string

const (
	TypeTrack ItemType = "track"
	TypeAlbum ItemType = "album"
)

// SourceType 标记候选的来源（provenance），用于去重优先级与推荐解释。
type SourceType string

const (
	SourceFavoriteArtist SourceType = "favorite_artist" // 收藏歌手的曲目/专辑
	SourceRelatedArtist  SourceType = "related_artist"  // 相似歌手扩展
	SourceGenreDiscovery SourceType = "genre_discovery" // 流派发现
	SourceTrending       SourceType = "trending"        // 社区热门（补充来源，只进入 Trending 区块）
)

// Priority 返回来源优先级，值越小优先级越高。
// 同一 (id, type) 从多个来源出现时，保留优先级更高的来源用于解释。
func (s SourceType) Priority() int {
	switch s {
	case SourceFavoriteArtist:
		return 0
	case SourceRelatedArtist:
		return 1
	case SourceGenreDiscovery:
		return 2
	case SourceTrending:
		return 3
	default:
		return 9
	}
}

// ItemRef 是候选物品的身份：(id, type) 二元组。
// 去重、收藏排除都以它为 key。
type ItemRef struct {
	ID   string
	Type ItemType
}

// Key 返回 "type:id" 形式的唯一键。
func (r ItemRef) Key() string {
	return string(r.Type) + ":" + r.ID
}

// Item 是推荐链路中的统一承载结构：候选阶段是 CandidateItem，打分后即 RecommendedItem。
// Reasons 用于 UI 解释；Labels 用于链路排障；Score/MatchPercent 用于排序与展示。
type Item struct {
	ItemRef

	// 展示元信息
	Name       string
	ArtistID   string
	ArtistName string
	ImageURL   string
	PreviewURL string
	Genres     []string

	// 曲库统计（由 feature.EnrichNode 注入，0 表示未知）
	Popularity      int
	CommunityRating float64

	// 来源（provenance）
	Source         SourceType
	SourceArtistID string

	// 打分结果
	Score        float64
	MatchPercent int
	Reasons      []Reason

	// 链路观测
	Labels map[string]utils.Label
	Meta   map[string]any
}

func NewItem(id string, typ ItemType) *Item {
	return &Item{
		ItemRef: ItemRef{ID: id, Type: typ},
		Labels:  make(map[string]utils.Label),
		Meta:    make(map[string]any),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// HasGenre 检查物品是否带有某个流派标签（忽略大小写的调用方需先归一化）。
func (it *Item) HasGenre(genre string) bool {
	for _, g := range it.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
