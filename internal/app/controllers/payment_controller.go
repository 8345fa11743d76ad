package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/middleware"
)

// PaymentController handles course checkout through Paystack
type PaymentController struct {
	paymentService PaymentService
	cookie         CookieConfig
	logger         zerolog.Logger
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(paymentService PaymentService, cookie CookieConfig, logger zerolog.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		cookie:         cookie,
		logger:         logger,
	}
}

// InitializePayment starts a checkout
// @Summary Initialize a course payment
// @Description Records a pending transaction and returns the Paystack checkout URL. A recent pending checkout for the same course is returned again instead of opening a new one.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InitializePaymentRequest true "Course and amount in GHS"
// @Success 200 {object} dto.APIResponse{data=dto.InitializePaymentResponse} "Checkout created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Failure 502 {object} dto.ErrorResponse "Payment provider error"
// @Router /payments/initialize [post]
func (c *PaymentController) InitializePayment(ctx *gin.Context) {
	principal, ok := currentPrincipal(ctx)
	if !ok {
		return
	}
	var req dto.InitializePaymentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.paymentService.InitializePayment(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("userId", principal.UserID.Hex()).
		Str("courseId", req.CourseID).
		Str("reference", resp.Reference).
		Bool("reused", resp.Reused).
		Msg("Payment initialized")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp, "Payment initialized"))
}

// VerifyPayment reconciles a payment reference
// @Summary Verify a payment
// @Description Confirms a reference with Paystack and grants enrollment on success. Safe to repeat; a settled reference returns its stored outcome. On success the payer gets a refreshed session token.
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param reference query string true "Payment reference"
// @Success 200 {object} dto.APIResponse{data=dto.VerifyPaymentResponse} "Verification outcome"
// @Failure 400 {object} dto.ErrorResponse "Missing reference"
// @Failure 403 {object} dto.ErrorResponse "Not the payer"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 502 {object} dto.ErrorResponse "Payment provider error"
// @Router /payments/verify [get]
func (c *PaymentController) VerifyPayment(ctx *gin.Context) {
	principal, ok := currentPrincipal(ctx)
	if !ok {
		return
	}

	resp, err := c.paymentService.VerifyPayment(ctx.Request.Context(), principal, ctx.Query("reference"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if resp.Token != "" {
		c.cookie.set(ctx, resp.Token)
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp, resp.Message))
}
