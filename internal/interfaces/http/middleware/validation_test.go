package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/interfaces/http/dto"
)

type validationTarget struct {
	Status   string `json:"status" binding:"omitempty,order_status"`
	Location string `json:"location" binding:"omitempty,location"`
	Method   string `json:"payment_method" binding:"required,payment_method"`
	Lines    []struct {
		Quantity int `json:"quantity" binding:"min=1"`
	} `json:"lines" binding:"dive"`
}

func bindBody(t *testing.T, body string) ([]dto.ValidationDetail, bool) {
	t.Helper()
	require.NoError(t, SetupValidator())

	var details []dto.ValidationDetail
	var isValidation bool
	r := gin.New()
	r.POST("/validate", func(c *gin.Context) {
		var req validationTarget
		details, isValidation = ValidationDetails(c.ShouldBindJSON(&req))
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	serve(r, req)
	return details, isValidation
}

func TestSetupValidator_CustomTags(t *testing.T) {
	t.Run("valid enums pass", func(t *testing.T) {
		details, isValidation := bindBody(t,
			`{"status":"confirmed","location":"retail_store","payment_method":"bank_transfer","lines":[{"quantity":1}]}`)
		assert.False(t, isValidation)
		assert.Empty(t, details)
	})

	t.Run("unknown order status", func(t *testing.T) {
		details, isValidation := bindBody(t, `{"status":"archived","payment_method":"cash"}`)
		require.True(t, isValidation)
		assert.Equal(t, []dto.ValidationDetail{{Field: "status", Reason: "not a valid order status"}}, details)
	})

	t.Run("body fields use json names", func(t *testing.T) {
		details, isValidation := bindBody(t,
			`{"location":"garage","payment_method":"cheque","lines":[{"quantity":0}]}`)
		require.True(t, isValidation)
		assert.Equal(t, "location is not a valid location, payment_method is not a valid payment method, lines[0].quantity is less than 1",
			ValidationMessage(details))
	})

	t.Run("required", func(t *testing.T) {
		details, _ := bindBody(t, `{}`)
		assert.Equal(t, "payment_method is required", ValidationMessage(details))
	})
}

func TestValidationDetails_NotValidation(t *testing.T) {
	_, ok := ValidationDetails(assert.AnError)
	assert.False(t, ok)
}
