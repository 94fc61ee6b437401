package handler

import (
	"errors"
	"net/http"

	"github.com/GymAurCode/in-ven-tory/internal/apierror"
	"github.com/GymAurCode/in-ven-tory/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindAndValidate binds the JSON body and runs validator tags.
// On failure it writes the response; the caller should return immediately.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidRequest, "Invalid JSON body"))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidRequest, "Invalid query parameters"))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidRequest, err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
	return false
}

// writeError maps service errors onto status codes. Anything it does not
// recognise is handed to the ErrorHandler middleware, which answers 500
// without leaking the cause.
func writeError(c *gin.Context, err error) {
	var stock *service.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		c.JSON(http.StatusBadRequest, apierror.InsufficientStock(stock.Error(), stock.Available, stock.Requested))
	case errors.Is(err, service.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidRequest, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.WithCode(apierror.CodeNotFound, err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid username or password"))
	default:
		_ = c.Error(err)
	}
}
