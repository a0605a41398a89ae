// Package feast 提供 Feast Feature Store 的在线特征客户端。
//
// 在本引擎中，Feast 承载社区统计特征（物品社区均分、热度），
// 由 CommunityStats 适配为 core.CommunityStatsService 供打分链路消费。
package feast

import (
	"context"
	"time"
)

// Client 是 Feast 在线特征的客户端接口。
//
// Feast 是一个开源的 Feature Store；本引擎只消费其在线特征路径
// （离线/物化面向训练与回灌，没有链路侧消费者）。
//
// 参考：https://github.com/feast-dev/feast
type Client interface {
	// GetOnlineFeatures 获取在线特征（用于实时打分）
	//
	// 参数：
	//   - features: 特征名称列表，例如 ["item_stats:community_rating"]
	//   - entityRows: 实体行，例如 [{"item_key": "track:123"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表
	Features []string

	// EntityRows 实体行
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，空时使用客户端默认）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// ClientConfig 客户端配置
type ClientConfig struct {
	Endpoint string
	Project  string
	Timeout  time.Duration
	Token    string // 静态 Token 认证（可选）
}

// ClientOption 配置选项
type ClientOption func(c *ClientConfig)

// WithTimeout 设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithStaticToken 设置静态 Token 认证
func WithStaticToken(token string) ClientOption {
	return func(c *ClientConfig) {
		c.Token = token
	}
}
