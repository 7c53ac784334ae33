package public

import "github.com/dujiao-next/marketcore/internal/provider"

// Handler 顾客侧接口处理器入口
// 说明：该处理器仅用于下单、付款声明、收货、领取红包等顾客 API。
type Handler struct {
	*provider.Container
}

// New 创建顾客侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
