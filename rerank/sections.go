// Package rerank 负责打分之后的截断与区块划分（Section Assembler）。
package rerank

import (
	"sort"

	"github.com/tunekit/tunekit/core"
)

// Sections 是推荐结果的命名区块，直接面向 UI。
// ForYou 是全批次 Top-N，允许与其他区块重叠；Trending 只承接社区热门来源（可选启用）。
type Sections struct {
	ForYou         []*core.Item `json:"for_you"`
	BasedOnArtists []*core.Item `json:"based_on_artists"`
	GenreDiscovery []*core.Item `json:"genre_discovery"`
	Trending       []*core.Item `json:"trending,omitempty"`
}

// AssembleSections 将打分后的候选划分为命名区块：
//   - ForYou：全批次按分数取 Top limit（不看来源，允许重叠）
//   - BasedOnArtists：首要理由是 same_artist / related_artist 的候选
//   - GenreDiscovery：首要理由是 same_genre / same_tag 的候选
//   - Trending：来源是社区热门的候选（不参与上面三个区块）
//
// 每个区块按分数降序并截断到 limit。空输入产出全空区块，不是错误
// （驱动 UI 的"还没有偏好"引导态）。
func AssembleSections(items []*core.Item, limit int) *Sections {
	sections := &Sections{
		ForYou:         make([]*core.Item, 0),
		BasedOnArtists: make([]*core.Item, 0),
		GenreDiscovery: make([]*core.Item, 0),
	}
	if len(items) == 0 {
		return sections
	}

	// 输入已由打分节点按分数降序排好；这里再排一次防御乱序输入，稳定排序保持同分次序
	ordered := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			ordered = append(ordered, it)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	for _, it := range ordered {
		if it.Source == core.SourceTrending {
			sections.Trending = append(sections.Trending, it)
			continue
		}

		if len(sections.ForYou) < limitOrAll(limit, len(ordered)) {
			sections.ForYou = append(sections.ForYou, it)
		}

		top, ok := core.TopReason(it.Reasons)
		if !ok {
			continue
		}
		switch top.Type {
		case core.ReasonSameArtist, core.ReasonRelatedArtist:
			sections.BasedOnArtists = append(sections.BasedOnArtists, it)
		case core.ReasonSameGenre, core.ReasonSameTag:
			sections.GenreDiscovery = append(sections.GenreDiscovery, it)
		}
	}

	sections.BasedOnArtists = capSection(sections.BasedOnArtists, limit)
	sections.GenreDiscovery = capSection(sections.GenreDiscovery, limit)
	sections.Trending = capSection(sections.Trending, limit)
	return sections
}

func limitOrAll(limit, total int) int {
	if limit <= 0 {
		return total
	}
	return limit
}

func capSection(items []*core.Item, limit int) []*core.Item {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
