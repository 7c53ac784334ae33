package merchant

import (
	handlershared "github.com/dujiao-next/marketcore/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getMerchantID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "merchant_id", "error.merchant_id_invalid", "error.merchant_id_type_invalid")
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}
