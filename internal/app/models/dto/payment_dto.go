package dto

// InitializePaymentRequest starts a Paystack checkout for a course.
// Amount is in major currency units (GHS).
type InitializePaymentRequest struct {
	CourseID      string  `json:"courseId" binding:"required,objectid" example:"665f1c2e9d1a4b0012345678"`
	Amount        float64 `json:"amount" binding:"required,gt=0,lte=1000000" example:"50"`
	Email         string  `json:"email" binding:"omitempty,email" example:"alice@example.com"`
	PaymentMethod string  `json:"paymentMethod" binding:"omitempty,oneof=mobile_money card bank bank_transfer ussd qr" example:"mobile_money"`
}

// InitializePaymentResponse points the client at the gateway checkout
type InitializePaymentResponse struct {
	Status           string `json:"status" example:"pending_payment"`
	AuthorizationURL string `json:"authorizationUrl" example:"https://checkout.paystack.com/abc123"`
	Reference        string `json:"reference" example:"PAY-1718000000000-ab12cd34"`
	Reused           bool   `json:"reused,omitempty"`
}

// VerifyPaymentResponse reports the reconciled outcome of a reference
type VerifyPaymentResponse struct {
	OK        bool                   `json:"ok" example:"true"`
	Status    string                 `json:"status" example:"success"`
	Message   string                 `json:"message" example:"Payment verified successfully"`
	Reference string                 `json:"reference" example:"PAY-1718000000000-ab12cd34"`
	CourseID  string                 `json:"courseId,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Token     string                 `json:"token,omitempty"`
}
