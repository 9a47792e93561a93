package presenters

import (
	"net/url"
	"strconv"

	"foodgram-backend/domain"
	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/logging"

	"github.com/gofiber/fiber/v2"
)

type ErrorBody struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

// SuccessResponse writes data as the JSON body. A nil data sends the status
// with an empty body.
func SuccessResponse(c *fiber.Ctx, data any, status int, message string) error {
	logging.Ctx(c.UserContext()).Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Msg(message)

	if data == nil {
		return c.SendStatus(status)
	}
	return c.Status(status).JSON(data)
}

// ErrorResponse writes {"detail": ...}. Server errors hide err behind message;
// validation errors add a per-field "errors" map.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	log := logging.Ctx(c.UserContext())
	event := log.Warn()
	if status >= fiber.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Msg(message)

	body := ErrorBody{Detail: message}
	if err != nil && status < fiber.StatusInternalServerError {
		body.Detail = err.Error()
	}
	if fields := utils.ValidationMessages(err); len(fields) > 0 {
		body.Detail = domain.MessageFailedValidation
		body.Errors = fields
	}
	return c.Status(status).JSON(body)
}

// Paginated renders a page the way the frontend expects:
// {count, next, previous, results}.
func Paginated[T any](c *fiber.Ctx, items []T, count int64, page domain.PaginationRequest, message string) error {
	page = page.Normalize()
	if items == nil {
		items = []T{}
	}

	res := domain.PaginatedResponse[T]{
		Count:   count,
		Results: items,
	}
	if int64(page.Page*page.Limit) < count {
		next := pageURL(c, page.Page+1)
		res.Next = &next
	}
	if page.Page > 1 {
		prev := pageURL(c, page.Page-1)
		res.Previous = &prev
	}

	return SuccessResponse(c, res, fiber.StatusOK, message)
}

func pageURL(c *fiber.Ctx, page int) string {
	q := url.Values{}
	for k, v := range c.Queries() {
		q.Set(k, v)
	}
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := c.BaseURL() + c.Path()
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// ParsePagination reads ?page= and ?limit=.
func ParsePagination(c *fiber.Ctx) domain.PaginationRequest {
	return domain.PaginationRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", domain.DefaultPageSize),
	}.Normalize()
}
