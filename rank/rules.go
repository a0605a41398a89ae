package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tunekit/tunekit/core"
)

// 打分是独立规则贡献的加和：每条命中的规则追加一条 Reason，总分是贡献之和。
// 规则未命中时不产生零贡献条目。新增规则时在 applyRules 中按固定顺序挂接。

func applyRules(it *core.Item, prefs *core.UserPreferences, w *core.ScoringWeights) []core.Reason {
	reasons := make([]core.Reason, 0, 4)
	reasons = appendSameArtist(reasons, it, prefs, w)
	reasons = appendRelatedArtist(reasons, it, w)
	reasons = appendSameGenre(reasons, it, prefs, w)
	reasons = appendSameTag(reasons, it, prefs, w)
	reasons = appendCommunityRating(reasons, it, w)
	reasons = appendAlreadyFavorited(reasons, it, prefs, w)
	return reasons
}

// same_artist：候选歌手在用户收藏中；该歌手均分高于用户基线时叠加高分加成。
func appendSameArtist(reasons []core.Reason, it *core.Item, prefs *core.UserPreferences, w *core.ScoringWeights) []core.Reason {
	if it.ArtistID == "" || !prefs.HasArtist(it.ArtistID) {
		return reasons
	}
	contribution := w.SameArtistBase
	if prefs.ArtistRatedAboveAverage(it.ArtistID) {
		contribution += w.HighRatingBonus
	}
	label := "More from an artist you love"
	if it.ArtistName != "" {
		label = fmt.Sprintf("More from %s", it.ArtistName)
	}
	return append(reasons, core.Reason{
		Type:         core.ReasonSameArtist,
		Label:        label,
		Contribution: contribution,
	})
}

// related_artist：候选来自相似歌手扩展。
func appendRelatedArtist(reasons []core.Reason, it *core.Item, w *core.ScoringWeights) []core.Reason {
	if it.Source != core.SourceRelatedArtist {
		return reasons
	}
	return append(reasons, core.Reason{
		Type:         core.ReasonRelatedArtist,
		Label:        "Similar to artists you like",
		Contribution: w.RelatedArtistBase,
	})
}

// same_genre：候选流派命中用户流派偏好，贡献按流派权重缩放；
// 该流派均分高于用户基线时叠加高分加成。每个命中的流派一条理由。
func appendSameGenre(reasons []core.Reason, it *core.Item, prefs *core.UserPreferences, w *core.ScoringWeights) []core.Reason {
	for _, g := range it.Genres {
		g = strings.ToLower(g)
		weight := prefs.GenreWeight(g)
		if weight <= 0 {
			continue
		}
		contribution := w.SameGenreBase * weight
		if prefs.GenreRatedAboveAverage(g) {
			contribution += w.HighRatingBonus
		}
		reasons = append(reasons, core.Reason{
			Type:         core.ReasonSameGenre,
			Label:        fmt.Sprintf("Matches your taste for %s", g),
			Contribution: contribution,
		})
	}
	return reasons
}

// same_tag：候选元信息（名称/歌手/流派）文本命中用户标签，每个命中的标签一条理由。
func appendSameTag(reasons []core.Reason, it *core.Item, prefs *core.UserPreferences, w *core.ScoringWeights) []core.Reason {
	if len(prefs.Tags) == 0 {
		return reasons
	}
	haystack := strings.ToLower(it.Name + " " + it.ArtistName + " " + strings.Join(it.Genres, " "))
	for _, tag := range sortedTags(prefs.Tags) {
		if !strings.Contains(haystack, tag) {
			continue
		}
		reasons = append(reasons, core.Reason{
			Type:         core.ReasonSameTag,
			Label:        fmt.Sprintf("Matches your tag %q", tag),
			Contribution: w.SameTagBase,
		})
	}
	return reasons
}

// sortedTags 返回排序后的标签列表，保证理由顺序确定。
func sortedTags(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// community_rating：社区均分可用时按乘数加成。
func appendCommunityRating(reasons []core.Reason, it *core.Item, w *core.ScoringWeights) []core.Reason {
	if it.CommunityRating <= 0 {
		return reasons
	}
	return append(reasons, core.Reason{
		Type:         core.ReasonCommunityRating,
		Label:        "Highly rated by the community",
		Contribution: it.CommunityRating * w.CommunityRatingMultiplier,
	})
}

// already_favorited：已收藏候选施加大额负贡献，保留展示但不挤占新推荐。
func appendAlreadyFavorited(reasons []core.Reason, it *core.Item, prefs *core.UserPreferences, w *core.ScoringWeights) []core.Reason {
	if !prefs.IsFavorited(it.ItemRef) {
		return reasons
	}
	return append(reasons, core.Reason{
		Type:         core.ReasonAlreadyFavorited,
		Label:        "Already in your favorites",
		Contribution: w.AlreadyFavoritedPenalty,
	})
}
