package filter

import (
	"context"
	"encoding/json"

	"github.com/tunekit/tunekit/core"
)

// BlocklistFilter 过滤掉用户主动隐藏或运营下架的候选。
// Keys 是内存中的 (type:id) 列表；Store/Key 提供存储侧黑名单（可选）。
type BlocklistFilter struct {
	// Keys 是内存中的黑名单，元素形如 "track:123"
	Keys []string

	// Store 用于从存储中读取黑名单（可选），value 是 JSON 字符串数组
	Store core.KVStore

	// Key 是 Store 中的黑名单 key，例如 "blocklist:items" 或 "user:{id}:hidden"
	Key string
}

func (f *BlocklistFilter) Name() string {
	return "filter.blocklist"
}

func (f *BlocklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	key := item.Key()

	for _, k := range f.Keys {
		if k == key {
			return true, nil
		}
	}

	if f.Store != nil && f.Key != "" {
		data, err := f.Store.Get(ctx, f.Key)
		if err == nil {
			var blocked []string
			if json.Unmarshal(data, &blocked) == nil {
				for _, k := range blocked {
					if k == key {
						return true, nil
					}
				}
			}
		}
	}

	return false, nil
}
