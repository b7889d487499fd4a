package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

var (
	ErrInvalidRequest = errors.New("invalidRequest")
	ErrInternalError  = errors.New("internalError")
	ErrAccessDenied   = errors.New("accessDenied")
	ErrNotFound       = errors.New("notFound")
)

type apiResponse struct {
	Errors []string `json:"errors,omitempty"`
	Data   any      `json:"data,omitempty"`
}

func errorStrings(errs []error) []string {
	strs := make([]string, 0, len(errs))
	for _, err := range errs {
		strs = append(strs, err.Error())
	}

	return strs
}

func RespondOK(c *gin.Context, obj any) {
	c.JSON(http.StatusOK, apiResponse{Data: obj})
}

func RespondBadRequest(c *gin.Context, errs ...error) {
	if len(errs) == 0 {
		errs = []error{ErrInvalidRequest}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, apiResponse{Errors: errorStrings(errs)})
}

func RespondNotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, apiResponse{Errors: errorStrings([]error{ErrNotFound})})
}

func RespondForbidden(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, apiResponse{Errors: errorStrings([]error{ErrAccessDenied})})
}

func RespondInternalErr(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, apiResponse{Errors: errorStrings([]error{ErrInternalError})})
}

// uintParam parses a numeric path parameter.
func uintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, ErrInvalidRequest
	}

	return uint(value), nil
}

// pagination reads limit/offset query parameters with sane defaults.
func pagination(c *gin.Context) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		return 0, 0, ErrInvalidRequest
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, ErrInvalidRequest
	}

	return limit, offset, nil
}
