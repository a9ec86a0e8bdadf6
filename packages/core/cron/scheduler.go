package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	boardWarmSpec  = "*/10 * * * * *"
	tokenPurgeSpec = "0 0 * * * *"
	jobTimeout     = 5 * time.Second
)

// BoardWarmer rebuilds the public board into the status cache.
type BoardWarmer interface {
	WarmCache(ctx context.Context) error
}

// TokenPurger removes expired refresh tokens and reports how many went.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron   *cron.Cron
	warmer BoardWarmer
	purger TokenPurger
}

func NewScheduler(warmer BoardWarmer, purger TokenPurger) *Scheduler {
	// Seconds precision; the board job runs too often for the verbose logger
	c := cron.New(cron.WithSeconds(), cron.WithLogger(cron.PrintfLogger(log.Default())))

	return &Scheduler{
		cron:   c,
		warmer: warmer,
		purger: purger,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	log.Println("Starting cron scheduler...")

	if s.warmer != nil {
		if _, err := s.cron.AddFunc(boardWarmSpec, s.runBoardWarm); err != nil {
			log.Printf("Error scheduling board warm job: %v", err)
			return err
		}
	}
	if s.purger != nil {
		if _, err := s.cron.AddFunc(tokenPurgeSpec, s.runTokenPurge); err != nil {
			log.Printf("Error scheduling token purge job: %v", err)
			return err
		}
	}

	s.cron.Start()
	log.Println("Cron scheduler started successfully")
	return nil
}

// Stop waits for running jobs to finish
func (s *Scheduler) Stop() {
	log.Println("Stopping cron scheduler...")
	<-s.cron.Stop().Done()
	log.Println("Cron scheduler stopped")
}

func (s *Scheduler) runBoardWarm() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.warmer.WarmCache(ctx); err != nil {
		log.Printf("Error warming status cache: %v", err)
	}
}

func (s *Scheduler) runTokenPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := s.purger.PurgeExpiredTokens(ctx)
	if err != nil {
		log.Printf("Error purging expired refresh tokens: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Purged %d expired refresh tokens", removed)
	}
}

// RunNow triggers every job once, outside the schedule
func (s *Scheduler) RunNow() {
	log.Println("Manually triggering scheduled jobs...")
	if s.warmer != nil {
		s.runBoardWarm()
	}
	if s.purger != nil {
		s.runTokenPurge()
	}
}
