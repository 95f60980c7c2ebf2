package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"brokersure/internal/adapters/persistence/models"
)

// NotificationService pushes lifecycle events to an external webhook.
// Delivery is best effort: failures are logged and never fail the
// operation that triggered them; retries belong to the receiving side.
type NotificationService struct {
	webhookURL string
	client     *http.Client
}

// NewNotificationService creates a notification service. An empty webhook
// URL turns it into a log-only notifier.
func NewNotificationService(webhookURL string) *NotificationService {
	return &NotificationService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type notifyEvent struct {
	Event   string `json:"event"`
	Message string `json:"message"`
	Ref     uint   `json:"ref"`
}

// NotifyNewOffer announces a freshly created coverage request to reviewers.
func (s *NotificationService) NotifyNewOffer(offer *models.Offer, customerName string) {
	s.send(notifyEvent{
		Event:   "offer.created",
		Message: fmt.Sprintf("New %s coverage request from %s", offer.CoverageType, customerName),
		Ref:     offer.ID,
	})
}

// NotifyOfferPriced tells the customer their offer has been priced.
func (s *NotificationService) NotifyOfferPriced(offer *models.Offer) {
	s.send(notifyEvent{
		Event:   "offer.priced",
		Message: fmt.Sprintf("Offer #%d priced at %.2f (%s)", offer.ID, offer.FinalPrice, offer.Status),
		Ref:     offer.ID,
	})
}

// NotifyPolicyIssued announces a successful issuance.
func (s *NotificationService) NotifyPolicyIssued(policy *models.Policy) {
	s.send(notifyEvent{
		Event:   "policy.issued",
		Message: fmt.Sprintf("Policy %s issued, premium %.2f", policy.PolicyNumber, policy.Premium),
		Ref:     policy.ID,
	})
}

// NotifyClaimResolved tells the holder their claim was decided.
func (s *NotificationService) NotifyClaimResolved(claim *models.Claim) {
	s.send(notifyEvent{
		Event:   "claim.resolved",
		Message: fmt.Sprintf("Claim #%d resolved: %s", claim.ID, claim.Status),
		Ref:     claim.ID,
	})
}

func (s *NotificationService) send(ev notifyEvent) {
	log.Printf("🔔 %s: %s", ev.Event, ev.Message)

	if s.webhookURL == "" {
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("❌ Notify marshal error: %v", err)
		return
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("❌ Notify webhook error: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("❌ Notify webhook returned %d", resp.StatusCode)
	}
}
