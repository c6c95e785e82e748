package fiber_handle

import (
	"errors"

	errorc "duanlian/pkg/core/err"

	"github.com/gofiber/fiber/v2"
)

// httpStatus 错误码到HTTP状态码的映射
func httpStatus(code *errorc.ErrorCode) int {
	switch code {
	case errorc.ErrorCodeValid:
		return fiber.StatusBadRequest
	case errorc.ErrorCodeNoAuth:
		return fiber.StatusUnauthorized
	case errorc.ErrorCodeForbidden:
		return fiber.StatusForbidden
	case errorc.ErrorCodeNotFound:
		return fiber.StatusNotFound
	case errorc.ErrorCodeConflict:
		return fiber.StatusConflict
	case errorc.ErrorCodeGone:
		return fiber.StatusGone
	case errorc.ErrorCodeUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		// DB、Third等内部错误不向外暴露具体类别
		return fiber.StatusInternalServerError
	}
}

func ErrHandler(ctx *fiber.Ctx, err error) error {

	var e *fiber.Error
	if errors.As(err, &e) {
		return ctx.Status(e.Code).SendString(e.Message)
	}

	cError := errorc.ParseError(err)

	return ctx.Status(httpStatus(cError.ErrorCode)).
		JSON(fiber.Map{"status": cError.Code, "message": cError.Msg, "errData": cError})
}
