package core

import "github.com/tunekit/tunekit/pkg/utils"

// RecommendContext 承载单次推荐请求的用户信息，贯穿整个 Pipeline 透传。
// Prefs 由 profile.Builder 在请求开始时构建，之后向下游只读。
type RecommendContext struct {
	UserID string

	// Prefs 是本次请求的偏好画像
	Prefs *UserPreferences

	// Weights 是本次请求的打分权重；nil 时各节点使用 DefaultWeights()
	Weights *ScoringWeights

	// Labels 是请求级标签，用于链路观测与策略驱动
	Labels map[string]utils.Label

	// Params 请求级上下文参数（limit、scene、debug 等）
	Params map[string]any
}

// EffectiveWeights 返回本次请求生效的权重：调用方传入则整体替换，否则默认值。
func (rctx *RecommendContext) EffectiveWeights() *ScoringWeights {
	if rctx != nil && rctx.Weights != nil {
		return rctx.Weights
	}
	return DefaultWeights()
}

// Preferences 返回画像，nil 时返回全空画像，调用方无需判空。
func (rctx *RecommendContext) Preferences() *UserPreferences {
	if rctx != nil && rctx.Prefs != nil {
		return rctx.Prefs
	}
	userID := ""
	if rctx != nil {
		userID = rctx.UserID
	}
	return NewUserPreferences(userID)
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}
