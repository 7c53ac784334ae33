package shared

import (
	"errors"

	"github.com/dujiao-next/marketcore/internal/http/response"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// ConcatMappedErrors 合并多组映射规则，靠前的规则优先。
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// RespondWithMappedError 按规则表输出错误；结构化错误附带明细数据。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if !errors.Is(err, rule.Target) {
			continue
		}
		if data := structuredErrorData(err); data != nil {
			RespondErrorWithData(c, rule.Code, rule.Key, data)
			return
		}
		RespondError(c, rule.Code, rule.Key, nil)
		return
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

func structuredErrorData(err error) gin.H {
	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) && len(stockErr.Items) > 0 {
		return gin.H{"items": stockErr.Items}
	}
	var ineligibleErr *service.PromotionIneligibleError
	if errors.As(err, &ineligibleErr) {
		return gin.H{"promotion_id": ineligibleErr.PromotionID, "reason": ineligibleErr.Reason}
	}
	var transitionErr *service.TransitionError
	if errors.As(err, &transitionErr) {
		return gin.H{"order_id": transitionErr.OrderID, "from": transitionErr.From, "to": transitionErr.To}
	}
	return nil
}

// OrderLookupErrorRules 订单查询通用映射。
var OrderLookupErrorRules = []MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrInvalidParams, Code: response.CodeBadRequest, Key: "error.bad_request"},
}

// OrderTransitionErrorRules 订单状态变更通用映射。
var OrderTransitionErrorRules = []MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrInvalidParams, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrInvalidTransition, Code: response.CodeConflict, Key: "error.order_status_invalid"},
	{Target: service.ErrOrderPaymentExpired, Code: response.CodeBadRequest, Key: "error.order_payment_expired"},
	{Target: service.ErrVerificationMismatch, Code: response.CodeBadRequest, Key: "error.verification_mismatch"},
	{Target: service.ErrAmountMismatch, Code: response.CodeBadRequest, Key: "error.amount_mismatch"},
}

// PromotionSaveErrorRules 活动创建/更新映射。
var PromotionSaveErrorRules = []MappedError{
	{Target: service.ErrPromotionNotFound, Code: response.CodeNotFound, Key: "error.promotion_not_found"},
	{Target: service.ErrPromotionInvalid, Code: response.CodeBadRequest, Key: "error.promotion_invalid"},
	{Target: service.ErrPromotionPoolShrink, Code: response.CodeBadRequest, Key: "error.promotion_pool_shrink"},
	{Target: service.ErrInvalidParams, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrMerchantNotFound, Code: response.CodeNotFound, Key: "error.merchant_not_found"},
}
