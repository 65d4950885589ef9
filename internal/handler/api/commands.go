package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"

	apphttp "Sentinel/pkg/http"
	applogger "Sentinel/pkg/logger"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

// Command runs one chat command and returns the reply text.
func (h *Handler) Command(c echo.Context) error {
	req := &commandRequest{}
	if verr := apphttp.ReadAndValidateRequest(c, req); verr != nil {
		return apphttp.BadRequestResponse(c, verr)
	}
	reply := h.Commands.Execute(c.Request().Context(), req.Text)
	return apphttp.SuccessResponse(c, map[string]string{"reply": reply})
}

// LineWebhook handles a LINE callback: every text message is executed as a
// command and answered through the reply API when a replier is configured.
func (h *Handler) LineWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return apphttp.AppErrorResponse(c, apphttp.BadRequestError("unreadable body"))
	}
	if h.LineSecret != "" && !validSignature(h.LineSecret, body, c.Request().Header.Get("X-Line-Signature")) {
		return apphttp.AppErrorResponse(c, apphttp.UnauthorizedError("bad signature"))
	}

	var payload lineWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return apphttp.AppErrorResponse(c, apphttp.BadRequestErrorf("invalid webhook body: %v", err))
	}

	ctx := c.Request().Context()
	replies := make([]string, 0, len(payload.Events))
	for _, ev := range payload.Events {
		if ev.Type != "message" || ev.Message.Type != "text" {
			continue
		}
		reply := h.Commands.Execute(ctx, ev.Message.Text)
		replies = append(replies, reply)
		if h.Replier == nil || ev.ReplyToken == "" {
			continue
		}
		if err := h.Replier.Reply(ctx, ev.ReplyToken, reply); err != nil {
			h.Log.Warn("webhook.reply failed", applogger.Error(err))
		}
	}
	return apphttp.SuccessResponse(c, map[string][]string{"replies": replies})
}

// validSignature checks the base64 HMAC-SHA256 of body under the channel secret.
func validSignature(secret string, body []byte, signature string) bool {
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
