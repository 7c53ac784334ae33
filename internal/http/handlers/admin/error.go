package admin

import (
	"github.com/dujiao-next/marketcore/internal/authz"
	"github.com/dujiao-next/marketcore/internal/cache"
	handlershared "github.com/dujiao-next/marketcore/internal/http/handlers/shared"
	"github.com/dujiao-next/marketcore/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var reaperErrorRules = []handlershared.MappedError{
	{Target: cache.ErrLeaseNotHeld, Code: response.CodeConflict, Key: "error.reaper_busy"},
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "user_id", "error.user_id_invalid", "error.user_id_type_invalid")
}

func respondOrderLookupError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.OrderLookupErrorRules, response.CodeInternal, "error.order_fetch_failed")
}

func respondOrderCancelError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.OrderTransitionErrorRules, response.CodeInternal, "error.order_update_failed")
}

func respondReaperError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, reaperErrorRules, response.CodeInternal, "error.reaper_failed")
}

var authzErrorRules = []handlershared.MappedError{
	{Target: authz.ErrUnknownRole, Code: response.CodeBadRequest, Key: "error.role_unknown"},
	{Target: authz.ErrInvalidPolicy, Code: response.CodeBadRequest, Key: "error.policy_invalid"},
	{Target: authz.ErrProtectedPolicy, Code: response.CodeForbidden, Key: "error.policy_protected"},
}

func respondAuthzError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_failed")
}
