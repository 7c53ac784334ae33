package merchant

import "github.com/dujiao-next/marketcore/internal/provider"

// Handler 商户端接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建商户端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
