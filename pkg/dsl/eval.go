package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/tunekit/tunekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("prefs", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是候选表达式解释器，使用 CEL (Common Expression Language) 实现。
// 运营侧可以用表达式定义排除规则或路由规则，无需改代码。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.popularity < 10 / item.score > 0.7
//   - 来源：item.source == "genre_discovery"
//   - 逻辑：item.source == "trending" && item.popularity < 5
//   - 包含："indie rock" in item.genres
//
// 示例：
//   - `item.popularity < 10 && item.source == "genre_discovery"` → 过滤低热度流派发现候选
//   - `item.community_rating > 4.0` → 只保留社区高分
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
	env  *cel.Env
}

// NewEval 创建一个新的表达式解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item: item,
		rctx: rctx,
		env:  env,
	}
}

// Evaluate 解析并执行表达式，返回布尔结果。
// 空表达式恒为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	genres := make([]interface{}, 0, len(e.item.Genres))
	for _, g := range e.item.Genres {
		genres = append(genres, g)
	}

	item := map[string]interface{}{
		"id":               e.item.ID,
		"type":             string(e.item.Type),
		"name":             e.item.Name,
		"artist_id":        e.item.ArtistID,
		"artist_name":      e.item.ArtistName,
		"genres":           genres,
		"popularity":       e.item.Popularity,
		"community_rating": e.item.CommunityRating,
		"source":           string(e.item.Source),
		"score":            e.item.Score,
	}

	prefs := e.rctx.Preferences()
	prefsMap := map[string]interface{}{
		"average_rating": prefs.AverageRating,
		"genre_weights":  prefs.GenreWeights,
		"empty":          prefs.Empty(),
	}

	rctx := map[string]interface{}{
		"user_id": e.rctx.UserID,
		"params":  e.rctx.Params,
	}

	return map[string]interface{}{
		"item":  item,
		"prefs": prefsMap,
		"rctx":  rctx,
	}
}
