package http

import (
	"bytes"
	"encoding/json"
	"errors"

	"whodunnit-be/internal/service/game"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

const (
	headerDeviceToken = "X-Device-Token"
	headerDevPlayerID = "X-Dev-Player-Id"
)

// readBody 解析可选的 JSON 请求体，空请求体保持零值
func readBody(ctx iris.Context, v any) error {
	body, err := ctx.GetBody()
	if err != nil {
		return game.ErrInvalidRequest.Errorf("read request body: %v", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return game.ErrInvalidRequest.Errorf("invalid request body: %v", err)
	}
	return nil
}

// deviceToken 优先使用请求头，其次是请求体里的 device_token
func deviceToken(ctx iris.Context, fromBody string) string {
	if token := ctx.GetHeader(headerDeviceToken); token != "" {
		return token
	}
	return fromBody
}

func statusFor(err error) int {
	var gameErr *game.Error
	if !errors.As(err, &gameErr) {
		return iris.StatusInternalServerError
	}

	switch gameErr.Code {
	case game.CodeSessionNotFound, game.CodePlayerNotFound:
		return iris.StatusNotFound
	}

	switch gameErr.Kind {
	case game.KindAuthorization:
		return iris.StatusForbidden
	case game.KindPrecondition:
		return iris.StatusConflict
	case game.KindInvalidInput:
		return iris.StatusBadRequest
	default:
		return iris.StatusInternalServerError
	}
}

func writeError(ctx iris.Context, err error) {
	status := statusFor(err)

	body := iris.Map{"error": err.Error()}

	var gameErr *game.Error
	if errors.As(err, &gameErr) {
		body["code"] = gameErr.Code
	} else {
		body["code"] = "Internal"
	}

	if status >= iris.StatusInternalServerError {
		zap.L().Error(
			"处理请求失败",
			zap.String("path", ctx.Path()),
			zap.Error(err),
		)
	} else {
		zap.L().Debug(
			"请求被拒绝",
			zap.String("path", ctx.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	ctx.StatusCode(status)
	ctx.JSON(body)
}
