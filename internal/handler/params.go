package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"clientdesk/internal/errors"
	"clientdesk/internal/repository"
)

const maxPerPage = 100

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, errors.ErrorResponse{
			Error: "resource not found",
			Code:  "NOT_FOUND",
		})
	}
	return uint(id), nil
}

// listQuery reads search, sort_by, sort_order, page and per_page.
func listQuery(c echo.Context) (repository.ListQuery, error) {
	var q repository.ListQuery
	err := echo.QueryParamsBinder(c).
		String("search", &q.Search).
		String("sort_by", &q.SortBy).
		String("sort_order", &q.SortOrder).
		Int("page", &q.Page).
		Int("per_page", &q.PerPage).
		BindError()
	if err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "BAD_REQUEST",
		})
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	return q, nil
}

func bindBody(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "BAD_REQUEST",
		})
	}
	return nil
}
