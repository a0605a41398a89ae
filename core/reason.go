package core

import "sort"

// ReasonType 是打分规则的类型标记。
// 每条规则命中时追加一条 Reason；未命中的规则不产生零贡献条目。
type ReasonType string

const (
	ReasonSameArtist       ReasonType = "same_artist"       // 候选歌手在用户收藏中
	ReasonRelatedArtist    ReasonType = "related_artist"    // 候选来自相似歌手扩展
	ReasonSameGenre        ReasonType = "same_genre"        // 候选流派命中用户流派偏好
	ReasonSameTag          ReasonType = "same_tag"          // 候选元信息命中用户标签
	ReasonCommunityRating  ReasonType = "community_rating"  // 社区均分加成
	ReasonAlreadyFavorited ReasonType = "already_favorited" // 已收藏惩罚
)

// Reason 是一条可展示的推荐理由：规则类型、人类可读文案、数值贡献。
// 总分 = 所有 Reason 的 Contribution 之和。
type Reason struct {
	Type         ReasonType `json:"type"`
	Label        string     `json:"label"`
	Contribution float64    `json:"contribution"`
}

// SortReasons 按贡献绝对值降序稳定排序，使 UI 优先展示影响最大的理由。
func SortReasons(reasons []Reason) {
	sort.SliceStable(reasons, func(i, j int) bool {
		return abs(reasons[i].Contribution) > abs(reasons[j].Contribution)
	})
}

// TopReason 返回贡献绝对值最大的理由；无理由时返回 (Reason{}, false)。
// 区块划分（rerank.AssembleSections）依赖它判断候选归属。
func TopReason(reasons []Reason) (Reason, bool) {
	if len(reasons) == 0 {
		return Reason{}, false
	}
	top := reasons[0]
	for _, r := range reasons[1:] {
		if abs(r.Contribution) > abs(top.Contribution) {
			top = r
		}
	}
	return top, true
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
