package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionStatus is the state of one payment attempt.
// pending moves to success or failed exactly once; both are terminal.
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

// DefaultPaymentMethod is the Paystack channel used when the client names none
const DefaultPaymentMethod = "mobile_money"

// Transaction is stored in the `transactions` collection. NotifiedAt marks
// the payment emails as queued.
type Transaction struct {
	ID               primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID     `bson:"userId" json:"userId"`
	Email            string                 `bson:"email" json:"email"`
	CourseID         primitive.ObjectID     `bson:"courseId" json:"courseId"`
	Amount           int64                  `bson:"amount" json:"amount" example:"5000"`
	Currency         string                 `bson:"currency" json:"currency" example:"GHS"`
	PaymentMethod    string                 `bson:"paymentMethod" json:"paymentMethod" example:"mobile_money"`
	Status           TransactionStatus      `bson:"status" json:"status" example:"pending"`
	Reference        string                 `bson:"reference" json:"reference" example:"PAY-1718000000000-ab12cd34"`
	AuthorizationURL string                 `bson:"authorizationUrl" json:"authorizationUrl"`
	AccessCode       string                 `bson:"accessCode,omitempty" json:"-"`
	GatewayResponse  map[string]interface{} `bson:"gatewayResponse,omitempty" json:"gatewayResponse,omitempty"`
	VerifiedAt       *time.Time             `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
	NotifiedAt       *time.Time             `bson:"notifiedAt,omitempty" json:"-"`
	CreatedAt        time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether the transaction reached success or failed
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionSuccess || t.Status == TransactionFailed
}
