package public

import (
	"github.com/dujiao-next/marketcore/internal/http/response"
	handlershared "github.com/dujiao-next/marketcore/internal/http/handlers/shared"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedError

var orderPlanErrorRules = []mappedHandlerError{
	{Target: service.ErrInvalidOrderItem, Code: response.CodeBadRequest, Key: "error.order_item_invalid"},
	{Target: service.ErrInvalidParams, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrMerchantNotFound, Code: response.CodeNotFound, Key: "error.merchant_not_found"},
	{Target: service.ErrMerchantNotActive, Code: response.CodeBadRequest, Key: "error.merchant_not_active"},
	{Target: service.ErrProductNotFound, Code: response.CodeBadRequest, Key: "error.product_not_found"},
	{Target: service.ErrProductNotAvailable, Code: response.CodeBadRequest, Key: "error.product_not_available"},
	{Target: service.ErrProductMerchant, Code: response.CodeBadRequest, Key: "error.product_merchant_mismatch"},
	{Target: service.ErrPromotionNotFound, Code: response.CodeBadRequest, Key: "error.promotion_not_found"},
	{Target: service.ErrPromotionIneligible, Code: response.CodeBadRequest, Key: "error.promotion_ineligible"},
	{Target: service.ErrPromotionNotActive, Code: response.CodeBadRequest, Key: "error.promotion_not_active"},
	{Target: service.ErrVoucherNotFound, Code: response.CodeBadRequest, Key: "error.voucher_not_found"},
	{Target: service.ErrVoucherNotUsable, Code: response.CodeBadRequest, Key: "error.voucher_not_usable"},
}

var orderCreateExtraErrorRules = []mappedHandlerError{
	{Target: service.ErrInsufficientStock, Code: response.CodeConflict, Key: "error.insufficient_stock"},
	{Target: service.ErrMinimumOrderNotMet, Code: response.CodeBadRequest, Key: "error.minimum_order_not_met"},
	{Target: service.ErrDeliveryInfoRequired, Code: response.CodeBadRequest, Key: "error.delivery_info_required"},
	{Target: service.ErrCodeGenerationFailed, Code: response.CodeInternal, Key: "error.code_generation_failed"},
}

var redPacketClaimErrorRules = []mappedHandlerError{
	{Target: service.ErrPromotionNotFound, Code: response.CodeNotFound, Key: "error.promotion_not_found"},
	{Target: service.ErrPromotionNotActive, Code: response.CodeBadRequest, Key: "error.promotion_not_active"},
	{Target: service.ErrRedPacketExhausted, Code: response.CodeConflict, Key: "error.red_packet_exhausted"},
	{Target: service.ErrRedPacketAlreadyClaimed, Code: response.CodeConflict, Key: "error.red_packet_already_claimed"},
	{Target: service.ErrInvalidParams, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrCodeGenerationFailed, Code: response.CodeInternal, Key: "error.code_generation_failed"},
}

var voucherLookupErrorRules = []mappedHandlerError{
	{Target: service.ErrVoucherNotFound, Code: response.CodeNotFound, Key: "error.voucher_not_found"},
	{Target: service.ErrInvalidParams, Code: response.CodeBadRequest, Key: "error.bad_request"},
}

func respondOrderPreviewError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, orderPlanErrorRules, response.CodeInternal, "error.order_fetch_failed")
}

func respondOrderCreateError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.ConcatMappedErrors(orderPlanErrorRules, orderCreateExtraErrorRules), response.CodeInternal, "error.order_create_failed")
}

func respondOrderLookupError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.OrderLookupErrorRules, response.CodeInternal, "error.order_fetch_failed")
}

func respondOrderTransitionError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.OrderTransitionErrorRules, response.CodeInternal, "error.order_update_failed")
}

func respondRedPacketClaimError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, redPacketClaimErrorRules, response.CodeInternal, "error.red_packet_claim_failed")
}
