package core

// ScoringWeights 是打分规则的权重配置，单次请求内不可变。
// 调用方传入自定义权重时整体替换默认值，不做逐字段合并。
type ScoringWeights struct {
	SameArtistBase            float64 `yaml:"same_artist_base" json:"same_artist_base"`
	RelatedArtistBase         float64 `yaml:"related_artist_base" json:"related_artist_base"`
	SameGenreBase             float64 `yaml:"same_genre_base" json:"same_genre_base"`
	SameTagBase               float64 `yaml:"same_tag_base" json:"same_tag_base"`
	HighRatingBonus           float64 `yaml:"high_rating_bonus" json:"high_rating_bonus"`
	CommunityRatingMultiplier float64 `yaml:"community_rating_multiplier" json:"community_rating_multiplier"`
	AlreadyFavoritedPenalty   float64 `yaml:"already_favorited_penalty" json:"already_favorited_penalty"`
}

// DefaultWeights 返回默认权重。
// AlreadyFavoritedPenalty 足够大，保证已收藏候选在默认权重下永远排在未收藏候选之后。
func DefaultWeights() *ScoringWeights {
	return &ScoringWeights{
		SameArtistBase:            30,
		RelatedArtistBase:         20,
		SameGenreBase:             15,
		SameTagBase:               10,
		HighRatingBonus:           20,
		CommunityRatingMultiplier: 5,
		AlreadyFavoritedPenalty:   -1000,
	}
}
