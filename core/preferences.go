package core

import "strings"

// RatedItem 是用户高分物品：评分严格高于用户自身均分的条目。
// ArtistIDs/Genres 由曲库补全，补全失败时为空（跳过该条目，不猜测）。
type RatedItem struct {
	ItemRef
	Rating    float64
	ArtistIDs []string
	Genres    []string
}

// UserPreferences 是用户偏好画像，每次推荐请求重新计算，向下游只读。
//
// 一句话定义：偏好画像 = 打分规则的"全部输入信号"
//
// 维度            作用
// ArtistIDs       same_artist 规则 / 相似歌手扩展入口
// GenreWeights    same_genre 规则（权重归一化到 (0,1]）/ 流派发现入口
// Tags            same_tag 规则（小写、去重）
// AverageRating   高分加成的基线（无评分时为 0，永不除零）
// ArtistRatings   歌手维度均分，高于基线时触发 HighRatingBonus
// GenreRatings    流派维度均分，同上
// FavoriteKeys    已收藏 (id,type) 集合，驱动 already_favorited 惩罚
type UserPreferences struct {
	UserID string

	ArtistIDs    map[string]bool
	GenreWeights map[string]float64
	Tags         map[string]bool
	HighRated    []RatedItem

	AverageRating float64
	ArtistRatings map[string]float64
	GenreRatings  map[string]float64

	FavoriteKeys map[string]bool
}

// NewUserPreferences 返回一个全空画像。
// 零信号用户（无收藏/评分/标签）就是合法的全空画像，不是错误。
func NewUserPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:        userID,
		ArtistIDs:     make(map[string]bool),
		GenreWeights:  make(map[string]float64),
		Tags:          make(map[string]bool),
		HighRated:     make([]RatedItem, 0),
		ArtistRatings: make(map[string]float64),
		GenreRatings:  make(map[string]float64),
		FavoriteKeys:  make(map[string]bool),
	}
}

// Empty 判断画像是否没有任何偏好信号（驱动调用方的"冷启动引导"状态）。
func (p *UserPreferences) Empty() bool {
	if p == nil {
		return true
	}
	return len(p.ArtistIDs) == 0 && len(p.GenreWeights) == 0 &&
		len(p.Tags) == 0 && len(p.HighRated) == 0
}

// HasArtist 检查歌手是否在用户收藏中。
func (p *UserPreferences) HasArtist(artistID string) bool {
	if p == nil || p.ArtistIDs == nil {
		return false
	}
	return p.ArtistIDs[artistID]
}

// GenreWeight 返回流派权重（流派标签统一小写），未命中为 0。
func (p *UserPreferences) GenreWeight(genre string) float64 {
	if p == nil || p.GenreWeights == nil {
		return 0
	}
	return p.GenreWeights[strings.ToLower(genre)]
}

// HasTag 检查用户是否使用过某个标签（忽略大小写）。
func (p *UserPreferences) HasTag(tag string) bool {
	if p == nil || p.Tags == nil {
		return false
	}
	return p.Tags[strings.ToLower(tag)]
}

// IsFavorited 检查 (id, type) 是否已在用户收藏中。
func (p *UserPreferences) IsFavorited(ref ItemRef) bool {
	if p == nil || p.FavoriteKeys == nil {
		return false
	}
	return p.FavoriteKeys[ref.Key()]
}

// ArtistRatedAboveAverage 判断歌手均分是否严格高于用户均分。
// 用户无评分（AverageRating == 0 且无记录）时恒为 false，保证高分加成不会凭空触发。
func (p *UserPreferences) ArtistRatedAboveAverage(artistID string) bool {
	if p == nil || p.ArtistRatings == nil {
		return false
	}
	r, ok := p.ArtistRatings[artistID]
	return ok && r > p.AverageRating
}

// GenreRatedAboveAverage 判断流派均分是否严格高于用户均分。
func (p *UserPreferences) GenreRatedAboveAverage(genre string) bool {
	if p == nil || p.GenreRatings == nil {
		return false
	}
	r, ok := p.GenreRatings[strings.ToLower(genre)]
	return ok && r > p.AverageRating
}
