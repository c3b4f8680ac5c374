package ports

import "context"

type PaymentMethod struct {
	ID       string
	Brand    string
	Last4    string
	Default  bool
}

type PaymentIntentStatus string

const (
	IntentRequiresConfirmation PaymentIntentStatus = "requires_confirmation"
	IntentProcessing           PaymentIntentStatus = "processing"
	IntentSucceeded            PaymentIntentStatus = "succeeded"
	IntentFailed               PaymentIntentStatus = "failed"
	IntentCanceled             PaymentIntentStatus = "canceled"
)

type PaymentIntent struct {
	ID       string
	Status   PaymentIntentStatus
	Amount   float64
	Currency string
	Metadata map[string]string
	Error    string
}

type WebhookEventType string

const (
	EventPaymentIntentSucceeded WebhookEventType = "payment_intent.succeeded"
	EventPaymentIntentFailed    WebhookEventType = "payment_intent.payment_failed"
)

type WebhookEvent struct {
	Type    WebhookEventType
	Intent  PaymentIntent
	EventID string
}

// PaymentGateway is the capability port onto the payment processor
// (Stripe-shaped). VerifyWebhook must reject events whose signature
// does not match the configured shared secret.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateSetupIntent(ctx context.Context, customerID string) (string, error)
	ListPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error)
	CreatePaymentIntent(ctx context.Context, amount float64, currency, customerID string, metadata map[string]string) (*PaymentIntent, error)
	ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (*PaymentIntent, error)
	CancelPaymentIntent(ctx context.Context, intentID string) error
	RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
	VerifyWebhook(payload []byte, signature, secret string) (*WebhookEvent, error)
}
