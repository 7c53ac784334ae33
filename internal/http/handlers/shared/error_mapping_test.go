package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/dujiao-next/marketcore/internal/constants"
	"github.com/dujiao-next/marketcore/internal/http/response"
	"github.com/dujiao-next/marketcore/internal/i18n"
	"github.com/dujiao-next/marketcore/internal/service"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	StatusCode int                    `json:"status_code"`
	Msg        string                 `json:"msg"`
	Data       map[string]interface{} `json:"data"`
}

func respondWith(t *testing.T, err error, rules []MappedError) envelope {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/orders/1/confirm", nil)
	c.Request.Header.Set("X-Locale", i18n.LocaleEN)
	RespondWithMappedError(c, err, rules, response.CodeInternal, "error.order_update_failed")

	var body envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return body
}

func TestRespondWithMappedErrorAttachesTransition(t *testing.T) {
	err := fmt.Errorf("confirm: %w", &service.TransitionError{
		OrderID: 12,
		From:    constants.OrderStatusCancelled,
		To:      constants.OrderStatusMerchantConfirmed,
	})

	body := respondWith(t, err, OrderTransitionErrorRules)
	if body.StatusCode != response.CodeConflict {
		t.Fatalf("expected conflict, got %d", body.StatusCode)
	}
	if body.Msg != i18n.T(i18n.LocaleEN, "error.order_status_invalid") {
		t.Fatalf("unexpected message: %s", body.Msg)
	}
	if body.Data["from"] != constants.OrderStatusCancelled || body.Data["to"] != constants.OrderStatusMerchantConfirmed {
		t.Fatalf("unexpected data: %+v", body.Data)
	}
}

func TestRespondWithMappedErrorPlainSentinel(t *testing.T) {
	body := respondWith(t, service.ErrVerificationMismatch, OrderTransitionErrorRules)
	if body.StatusCode != response.CodeBadRequest || body.Data != nil {
		t.Fatalf("sentinel without details should carry no data, got %+v", body)
	}
}

func TestRespondWithMappedErrorFallback(t *testing.T) {
	body := respondWith(t, errors.New("connection reset"), OrderTransitionErrorRules)
	if body.StatusCode != response.CodeInternal {
		t.Fatalf("unmapped error should fall back to internal, got %d", body.StatusCode)
	}
	if body.Msg != i18n.T(i18n.LocaleEN, "error.order_update_failed") {
		t.Fatalf("unexpected fallback message: %s", body.Msg)
	}
}

func TestConcatMappedErrorsKeepsPriority(t *testing.T) {
	first := []MappedError{{Target: service.ErrInvalidParams, Code: response.CodeBadRequest, Key: "error.bad_request"}}
	second := []MappedError{{Target: service.ErrInvalidParams, Code: response.CodeInternal, Key: "error.internal"}}

	body := respondWith(t, service.ErrInvalidParams, ConcatMappedErrors(first, second))
	if body.StatusCode != response.CodeBadRequest {
		t.Fatalf("earlier rule should win, got %d", body.StatusCode)
	}
}
