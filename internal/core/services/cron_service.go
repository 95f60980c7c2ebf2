package services

import (
	"context"
	"log"
	"time"

	"brokersure/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs the background reconciliation jobs. Expiry is already
// enforced at read and mutation time; the nightly sweep only brings stored
// rows in line so reports and raw queries see the same answer.
type CronService struct {
	cron             *cron.Cron
	offerRepo        *repositories.OfferRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(offerRepo *repositories.OfferRepository, refreshTokenRepo repositories.RefreshTokenRepository) *CronService {
	return &CronService{
		cron:             cron.New(),
		offerRepo:        offerRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() error {
	// Nightly offer expiry sweep at 01:00
	if _, err := s.cron.AddFunc("0 1 * * *", s.sweepExpiredOffers); err != nil {
		return err
	}

	// Purge expired refresh tokens at 01:30
	if _, err := s.cron.AddFunc("30 1 * * *", s.cleanupRefreshTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron service stopped")
}

func (s *CronService) sweepExpiredOffers() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := s.offerRepo.ExpirePending(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Offer expiry sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("✅ Offer expiry sweep: %d offers expired", count)
	}
}

func (s *CronService) cleanupRefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Refresh token cleanup failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}
