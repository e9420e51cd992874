package reports

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/reports/books/:name/issuance", h.IssuanceHistory)
	r.GET("/reports/books/:name/total-rent", h.TotalRentByName)
	r.GET("/reports/users/:name/books", h.BooksIssuedToUser)
	r.GET("/reports/loans", h.IssuedInDateRange)
}

func (h *Handler) IssuanceHistory(c *gin.Context) {
	res, err := h.svc.IssuanceHistory(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) TotalRentByName(c *gin.Context) {
	res, err := h.svc.TotalRentByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) BooksIssuedToUser(c *gin.Context) {
	res, err := h.svc.BooksIssuedToUser(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) IssuedInDateRange(c *gin.Context) {
	res, err := h.svc.IssuedInDateRange(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ===== helpers =====

type errDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func apiErr(code Code, msg string) errDTO {
	var e errDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func apiErrFrom(err error) errDTO {
	if api, ok := err.(*APIError); ok {
		return apiErr(api.Code, api.Message)
	}
	return apiErr(CodeInternal, err.Error())
}
