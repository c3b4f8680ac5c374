// Package stripe implements ports.PaymentGateway against Stripe's
// REST API over net/http, for the same reason the sibling github and
// llm packages give: no payment SDK appears anywhere in the retrieved
// example pack, so the spec's "small capability port" framing is
// honored literally.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oncodeoperations/artemis-core/internal/ports"
)

const baseURL = "https://api.stripe.com/v1"
const callTimeout = 30 * time.Second

type Client struct {
	secretKey     string
	webhookSecret string
	http          *http.Client
	log           *logrus.Entry
}

func New(secretKey, webhookSecret string, log *logrus.Entry) *Client {
	return &Client{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		http:          &http.Client{Timeout: callTimeout},
		log:           log,
	}
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.secretKey, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("payment gateway unavailable: status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var errBody struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("payment gateway rejected request: %s", errBody.Error.Message)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	form := url.Values{"email": {email}, "name": {name}}
	if err := c.post(ctx, "/customers", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) CreateSetupIntent(ctx context.Context, customerID string) (string, error) {
	var out struct {
		ClientSecret string `json:"client_secret"`
	}
	form := url.Values{"customer": {customerID}}
	if err := c.post(ctx, "/setup_intents", form, &out); err != nil {
		return "", err
	}
	return out.ClientSecret, nil
}

func (c *Client) ListPaymentMethods(ctx context.Context, customerID string) ([]ports.PaymentMethod, error) {
	var out struct {
		Data []struct {
			ID   string `json:"id"`
			Card struct {
				Brand string `json:"brand"`
				Last4 string `json:"last4"`
			} `json:"card"`
		} `json:"data"`
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/payment_methods?customer="+url.QueryEscape(customerID)+"&type=card", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.secretKey, "")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment gateway unavailable: %w", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	methods := make([]ports.PaymentMethod, 0, len(out.Data))
	for i, m := range out.Data {
		methods = append(methods, ports.PaymentMethod{ID: m.ID, Brand: m.Card.Brand, Last4: m.Card.Last4, Default: i == 0})
	}
	return methods, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, amount float64, currency, customerID string, metadata map[string]string) (*ports.PaymentIntent, error) {
	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	form := url.Values{
		"amount":               {strconv.FormatInt(int64(amount*100), 10)},
		"currency":             {currency},
		"customer":             {customerID},
		"confirmation_method":  {"manual"},
	}
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}
	if err := c.post(ctx, "/payment_intents", form, &out); err != nil {
		return nil, err
	}
	return &ports.PaymentIntent{ID: out.ID, Status: ports.PaymentIntentStatus(out.Status), Amount: amount, Currency: currency, Metadata: metadata}, nil
}

func (c *Client) ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (*ports.PaymentIntent, error) {
	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	form := url.Values{"payment_method": {paymentMethodID}}
	if err := c.post(ctx, "/payment_intents/"+intentID+"/confirm", form, &out); err != nil {
		return nil, err
	}
	return &ports.PaymentIntent{ID: out.ID, Status: ports.PaymentIntentStatus(out.Status)}, nil
}

func (c *Client) CancelPaymentIntent(ctx context.Context, intentID string) error {
	return c.post(ctx, "/payment_intents/"+intentID+"/cancel", url.Values{}, nil)
}

func (c *Client) RetrievePaymentIntent(ctx context.Context, intentID string) (*ports.PaymentIntent, error) {
	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/payment_intents/"+intentID, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.secretKey, "")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment gateway unavailable: %w", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &ports.PaymentIntent{ID: out.ID, Status: ports.PaymentIntentStatus(out.Status)}, nil
}

// VerifyWebhook validates the Stripe-Signature header's v1 HMAC-SHA256
// over "timestamp.payload" against the shared webhook secret.
func (c *Client) VerifyWebhook(payload []byte, signature, secret string) (*ports.WebhookEvent, error) {
	timestamp, v1Sig, err := parseSignatureHeader(signature)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(v1Sig)) {
		return nil, fmt.Errorf("webhook signature mismatch")
	}

	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID       string            `json:"id"`
				Status   string            `json:"status"`
				Amount   float64           `json:"amount"`
				Currency string            `json:"currency"`
				Metadata map[string]string `json:"metadata"`
				LastPaymentError *struct {
					Message string `json:"message"`
				} `json:"last_payment_error"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("webhook payload decode: %w", err)
	}

	intent := ports.PaymentIntent{
		ID:       raw.Data.Object.ID,
		Status:   ports.PaymentIntentStatus(raw.Data.Object.Status),
		Amount:   raw.Data.Object.Amount / 100,
		Currency: raw.Data.Object.Currency,
		Metadata: raw.Data.Object.Metadata,
	}
	if raw.Data.Object.LastPaymentError != nil {
		intent.Error = raw.Data.Object.LastPaymentError.Message
	}

	return &ports.WebhookEvent{Type: ports.WebhookEventType(raw.Type), Intent: intent, EventID: raw.ID}, nil
}

func parseSignatureHeader(header string) (timestamp, v1 string, err error) {
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			v1 = kv[1]
		}
	}
	if timestamp == "" || v1 == "" {
		return "", "", fmt.Errorf("malformed signature header")
	}
	return timestamp, v1, nil
}
