package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 交互数据错误：UNAVAILABLE（用户收藏/评分/标签读不到，请求级致命）
//   - 曲库错误：NOT_FOUND / UNAVAILABLE（局部降级，不致命）
//   - 引擎错误：SUPERSEDED（刷新被更新的请求取代）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "interaction", "catalog"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型（支持 %w 包装链）
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链上的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeSuperseded    = "SUPERSEDED"     // 请求被更新的请求取代
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleInteraction = "interaction" // 用户交互数据（收藏/评分/标签）
	ModuleCatalog     = "catalog"     // 流媒体曲库
	ModuleCommunity   = "community"   // 社区统计（均分/热度）
	ModuleEngine      = "engine"      // 推荐引擎入口
)

// 预定义错误
var (
	// ErrInteractionUnavailable 表示交互存储不可达，整个推荐请求致命。
	ErrInteractionUnavailable = NewDomainError(ModuleInteraction, ErrorCodeUnavailable, "interaction: store unavailable")

	// ErrCatalogUnavailable 表示曲库调用失败；调用方应局部降级而非中断请求。
	ErrCatalogUnavailable = NewDomainError(ModuleCatalog, ErrorCodeUnavailable, "catalog: lookup failed")

	// ErrSuperseded 表示一次刷新在完成前被更新的刷新取代，结果已被丢弃。
	ErrSuperseded = NewDomainError(ModuleEngine, ErrorCodeSuperseded, "engine: refresh superseded by a newer request")
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsSuperseded 检查错误是否为 SUPERSEDED
func IsSuperseded(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeSuperseded
	}
	return false
}
