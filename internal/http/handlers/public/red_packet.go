package public

import (
	"strings"

	handlershared "github.com/dujiao-next/marketcore/internal/http/handlers/shared"
	"github.com/dujiao-next/marketcore/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ClaimRedPacket 领取红包，成功后返回代金券
func (h *Handler) ClaimRedPacket(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	promotionID, ok := handlershared.ParseIDParam(c, "promotion_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	result, err := h.RedPacketService.Claim(c.Request.Context(), promotionID, uid)
	if err != nil {
		respondRedPacketClaimError(c, err)
		return
	}

	requestLog(c).Infow("red_packet_claimed",
		"promotion_id", promotionID,
		"user_id", uid,
		"voucher_id", result.VoucherID,
	)
	response.Success(c, result)
}

// ListVouchers 获取我的代金券
func (h *Handler) ListVouchers(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := handlershared.ParsePagination(c)
	vouchers, total, err := h.VoucherService.ListByUser(uid, strings.TrimSpace(c.Query("status")), page, pageSize)
	if err != nil {
		handlershared.RespondWithMappedError(c, err, voucherLookupErrorRules, response.CodeInternal, "error.voucher_fetch_failed")
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, vouchers, pagination)
}

// GetVoucher 按券码获取我的代金券
func (h *Handler) GetVoucher(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	voucher, err := h.VoucherService.GetForUser(uid, code)
	if err != nil {
		handlershared.RespondWithMappedError(c, err, voucherLookupErrorRules, response.CodeInternal, "error.voucher_fetch_failed")
		return
	}

	response.Success(c, voucher)
}
