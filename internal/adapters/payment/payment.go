// Package payment defines the payment provider collaborator. The core only
// needs charge-and-confirm semantics; the real gateway lives outside.
package payment

import (
	"context"
	"fmt"
	"log"
	"time"

	"brokersure/internal/core/domain"

	"github.com/google/uuid"
)

// ChargeRequest describes one payment attempt.
type ChargeRequest struct {
	OfferID     uint    `json:"offer_id"`
	CustomerID  uint    `json:"customer_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	CardToken   string  `json:"card_token"`
	Description string  `json:"description"`
}

// Confirmation is the provider's proof of a successful charge.
type Confirmation struct {
	Reference string    `json:"reference"`
	Amount    float64   `json:"amount"`
	ChargedAt time.Time `json:"charged_at"`
}

// Provider charges a customer. A rejected charge returns
// domain.ErrDeclined; the caller must leave all records untouched.
type Provider interface {
	Charge(ctx context.Context, req *ChargeRequest) (*Confirmation, error)
}

// SandboxProvider approves every charge except the configured decline
// token, which simulates a gateway rejection. Used in dev mode and tests.
type SandboxProvider struct {
	DeclineToken string
}

// NewSandboxProvider creates a sandbox provider.
func NewSandboxProvider(declineToken string) *SandboxProvider {
	if declineToken == "" {
		declineToken = "tok_declined"
	}
	return &SandboxProvider{DeclineToken: declineToken}
}

// Charge approves the request unless the card token matches the decline
// token or the amount is not positive.
func (p *SandboxProvider) Charge(ctx context.Context, req *ChargeRequest) (*Confirmation, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrDeclined)
	}
	if req.CardToken == p.DeclineToken {
		return nil, fmt.Errorf("%w: card rejected by issuer", domain.ErrDeclined)
	}

	conf := &Confirmation{
		Reference: "sandbox-" + uuid.New().String(),
		Amount:    req.Amount,
		ChargedAt: time.Now(),
	}
	log.Printf("💳 Sandbox charge approved: offer=%d amount=%.2f ref=%s", req.OfferID, req.Amount, conf.Reference)
	return conf, nil
}
