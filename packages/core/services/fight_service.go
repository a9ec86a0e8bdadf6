package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"fight-manager-api/packages/core/models"
	"fight-manager-api/packages/core/schedule"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FightSettings struct {
	Buffer             time.Duration
	MaxDurationMinutes int
	Location           *time.Location
}

// FightService owns every write to the fights table. Mutations are serialized
// so that numbering and timing stay consistent across concurrent requests.
type FightService struct {
	db       *gorm.DB
	cache    StatusCache
	settings FightSettings
	now      func() time.Time
	mu       sync.Mutex
}

func NewFightService(db *gorm.DB, cache StatusCache, settings FightSettings) *FightService {
	if cache == nil {
		cache = NoopStatusCache{}
	}
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if settings.MaxDurationMinutes <= 0 {
		settings.MaxDurationMinutes = 60
	}
	return &FightService{
		db:       db,
		cache:    cache,
		settings: settings,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *FightService) SetClock(now func() time.Time) {
	s.now = now
}

// Queries

func (s *FightService) List(ctx context.Context) ([]models.Fight, error) {
	fights, err := s.load(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return schedule.SortByStart(fights), nil
}

func (s *FightService) ListByNumber(ctx context.Context) ([]models.Fight, error) {
	return s.load(s.db.WithContext(ctx))
}

func (s *FightService) Get(ctx context.Context, id string) (*models.Fight, error) {
	var fight models.Fight
	if err := s.db.WithContext(ctx).First(&fight, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFightNotFound
		}
		return nil, err
	}
	return &fight, nil
}

func (s *FightService) Status(ctx context.Context) (schedule.Status, []models.Fight, error) {
	fights, err := s.load(s.db.WithContext(ctx))
	if err != nil {
		return schedule.Status{}, nil, err
	}
	return schedule.Evaluate(fights), fights, nil
}

func (s *FightService) Ongoing(ctx context.Context) (*models.Fight, error) {
	st, _, err := s.Status(ctx)
	return st.Ongoing, err
}

func (s *FightService) Ready(ctx context.Context) (*models.Fight, error) {
	st, _, err := s.Status(ctx)
	return st.Ready, err
}

// Next returns the upcoming fights that have not completed, by fight number.
func (s *FightService) Next(ctx context.Context, limit int) ([]models.Fight, error) {
	var fights []models.Fight
	err := s.db.WithContext(ctx).
		Where("is_completed = ?", false).
		Order("fight_number ASC").
		Limit(limit).
		Find(&fights).Error
	if err != nil {
		return nil, err
	}
	return fights, nil
}

// Past returns completed fights, most recent number first.
func (s *FightService) Past(ctx context.Context, limit int) ([]models.Fight, error) {
	var fights []models.Fight
	err := s.db.WithContext(ctx).
		Where("is_completed = ?", true).
		Order("fight_number DESC").
		Limit(limit).
		Find(&fights).Error
	if err != nil {
		return nil, err
	}
	return fights, nil
}

func (s *FightService) Board(ctx context.Context) (*models.Board, error) {
	fights, err := s.load(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	board := schedule.BuildBoard(fights, s.now())
	return &board, nil
}

// PublicBoard serves the board from the status cache when it is warm.
func (s *FightService) PublicBoard(ctx context.Context) (*models.Board, error) {
	if board, err := s.cache.GetBoard(ctx); err != nil {
		log.Printf("status cache read failed: %v", err)
	} else if board != nil {
		return board, nil
	}
	return s.RefreshCache(ctx)
}

// RefreshCache rebuilds the board and stores it in the status cache.
func (s *FightService) RefreshCache(ctx context.Context) (*models.Board, error) {
	board, err := s.Board(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetBoard(ctx, board); err != nil {
		log.Printf("status cache write failed: %v", err)
	}
	return board, nil
}

// WarmCache refreshes the cached board for the scheduler.
func (s *FightService) WarmCache(ctx context.Context) error {
	_, err := s.RefreshCache(ctx)
	return err
}

// Lifecycle

func (s *FightService) Start(ctx context.Context, id string) (*models.Fight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.Fight
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		fights, idx, err := s.loadWith(tx, id)
		if err != nil {
			return err
		}
		fight := fights[idx]
		if fight.ActualStart != nil {
			return ErrFightAlreadyStart
		}
		if fight.IsCompleted {
			return ErrFightCompleted
		}
		if schedule.Ongoing(fights) != nil {
			return ErrAnotherFightActive
		}

		now := s.now()
		fight.ActualStart = &now
		fight.ExpectedStart = now
		if err := tx.Save(&fight).Error; err != nil {
			return err
		}
		fights[idx] = fight

		next := schedule.NextStart(now, fight.Duration, s.settings.Buffer)
		retimed, _ := schedule.Retime(fights, next, s.settings.Buffer, fight.FightNumber+1)
		if err := saveSchedule(tx, fights, retimed); err != nil {
			return err
		}
		result = fight
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	log.Printf("Fight #%d started", result.FightNumber)
	return &result, nil
}

func (s *FightService) End(ctx context.Context, id string) (*models.Fight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.Fight
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		fights, idx, err := s.loadWith(tx, id)
		if err != nil {
			return err
		}
		fight := fights[idx]
		if fight.ActualStart == nil {
			return ErrFightNotStarted
		}
		if fight.ActualEnd != nil {
			return ErrFightAlreadyEnded
		}

		now := s.now()
		fight.ActualEnd = &now
		fight.IsCompleted = true
		if err := tx.Save(&fight).Error; err != nil {
			return err
		}
		fights[idx] = fight

		retimed, _ := schedule.Retime(fights, now.Add(s.settings.Buffer), s.settings.Buffer, fight.FightNumber+1)
		if err := saveSchedule(tx, fights, retimed); err != nil {
			return err
		}
		result = fight
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	log.Printf("Fight #%d ended", result.FightNumber)
	return &result, nil
}

// Cancel marks a fight as completed without a result. Cancelling the ongoing
// fight ends it immediately.
func (s *FightService) Cancel(ctx context.Context, id string) (*models.Fight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.Fight
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		fights, idx, err := s.loadWith(tx, id)
		if err != nil {
			return err
		}
		fight := fights[idx]
		if fight.IsCompleted {
			return ErrFightCompleted
		}

		now := s.now()
		wasOngoing := fight.IsOngoing()
		fight.IsCompleted = true
		fight.IsCancelled = true
		if wasOngoing {
			fight.ActualEnd = &now
		}
		if err := tx.Save(&fight).Error; err != nil {
			return err
		}
		fights[idx] = fight

		var retimed []models.Fight
		if wasOngoing {
			retimed, _ = schedule.Retime(fights, now.Add(s.settings.Buffer), s.settings.Buffer, fight.FightNumber+1)
		} else {
			retimed, _ = schedule.RetimeAll(fights, now, s.settings.Buffer)
		}
		if err := saveSchedule(tx, fights, retimed); err != nil {
			return err
		}
		result = fight
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	log.Printf("Fight #%d cancelled", result.FightNumber)
	return &result, nil
}

// Reset puts a fight back in the pending state.
func (s *FightService) Reset(ctx context.Context, id string) (*models.Fight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.Fight
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		fights, idx, err := s.loadWith(tx, id)
		if err != nil {
			return err
		}
		if ongoing := schedule.Ongoing(fights); ongoing != nil && ongoing.ID != id {
			return ErrAnotherFightActive
		}

		fight := fights[idx]
		fight.ActualStart = nil
		fight.ActualEnd = nil
		fight.IsCompleted = false
		fight.IsCancelled = false
		if err := tx.Save(&fight).Error; err != nil {
			return err
		}
		fights[idx] = fight

		retimed, _ := schedule.RetimeAll(fights, s.now(), s.settings.Buffer)
		if err := saveSchedule(tx, fights, retimed); err != nil {
			return err
		}
		result = findByID(retimed, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &result, nil
}

// Editing

// Add inserts a new fight at the requested position, or at the end of the
// card when none is given.
func (s *FightService) Add(ctx context.Context, req models.CreateFightRequest) (*models.Fight, error) {
	fight, err := s.buildFight(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.Fight
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		fights, err := s.load(tx)
		if err != nil {
			return err
		}

		position := len(fights) + 1
		if req.Position != nil {
			position = *req.Position
			if position < 1 {
				return ErrInvalidNumber
			}
			if position > len(fights)+1 {
				position = len(fights) + 1
			}
			if position < schedule.Evaluate(fights).FirstOpenSlot(fights) {
				return ErrPositionLocked
			}
		}

		inserted := schedule.Insert(fights, fight, position)
		retimed, _ := schedule.RetimeAll(inserted, s.now(), s.settings.Buffer)
		result = findByID(retimed, fight.ID)
		if err := tx.Create(&result).Error; err != nil {
			return err
		}
		return saveSchedule(tx, fights, retimed)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	log.Printf("Fight #%d added: %s vs %s", result.FightNumber, result.FighterA, result.FighterB)
	return &result, nil
}

func (s *FightService) Update(ctx context.Context, id string, req models.UpdateFightRequest) (*models.Fight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.Fight
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		fights, idx, err := s.loadWith(tx, id)
		if err != nil {
			return err
		}
		fight := fights[idx]
		if !schedule.Evaluate(fights).CanEdit(fight) {
			return ErrFightLocked
		}

		if err := s.applyUpdate(&fight, req); err != nil {
			return err
		}
		if err := tx.Save(&fight).Error; err != nil {
			return err
		}
		fights[idx] = fight

		retimed, _ := schedule.RetimeAll(fights, s.now(), s.settings.Buffer)
		if err := saveSchedule(tx, fights, retimed); err != nil {
			return err
		}
		result = findByID(retimed, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return &result, nil
}

// ChangeNumber moves a fight to a new position and returns the card in fight
// number order.
func (s *FightService) ChangeNumber(ctx context.Context, id string, number int) ([]models.Fight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Fight
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		fights, idx, err := s.loadWith(tx, id)
		if err != nil {
			return err
		}
		if number < 1 || number > len(fights) {
			return ErrInvalidNumber
		}

		st := schedule.Evaluate(fights)
		if !st.CanReorder(fights[idx]) {
			return ErrFightLocked
		}
		if number < st.NextAvailable.FightNumber {
			return ErrPositionLocked
		}

		renumbered, err := schedule.Renumber(fights, id, number)
		if err != nil {
			return ErrInvalidNumber
		}
		retimed, _ := schedule.RetimeAll(renumbered, s.now(), s.settings.Buffer)
		if err := saveSchedule(tx, fights, retimed); err != nil {
			return err
		}
		result = retimed
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return result, nil
}

func (s *FightService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		fights, idx, err := s.loadWith(tx, id)
		if err != nil {
			return err
		}
		if !schedule.Evaluate(fights).CanEdit(fights[idx]) {
			return ErrFightLocked
		}

		if err := tx.Delete(&models.Fight{}, "id = ?", id).Error; err != nil {
			return err
		}
		remaining, err := schedule.Remove(fights, id)
		if err != nil {
			return ErrFightNotFound
		}
		retimed, _ := schedule.RetimeAll(remaining, s.now(), s.settings.Buffer)
		return saveSchedule(tx, fights, retimed)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ClearAll deletes every fight and returns how many were removed.
func (s *FightService) ClearAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Fight{})
	if result.Error != nil {
		return 0, result.Error
	}
	s.invalidate(ctx)
	log.Printf("Cleared %d fights", result.RowsAffected)
	return result.RowsAffected, nil
}

// SetStartTime schedules the remaining card from a wall clock time today,
// given as HH:MM or HH:MM:SS. It returns the number of fights retimed.
func (s *FightService) SetStartTime(ctx context.Context, clock string) (int, error) {
	start, err := s.parseClock(clock)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		fights, err := s.load(tx)
		if err != nil {
			return err
		}
		locked := schedule.LockedThrough(fights)
		for _, f := range fights {
			if f.IsPending() && f.FightNumber > locked {
				count++
			}
		}
		retimed, _ := schedule.Retime(fights, start, s.settings.Buffer, locked+1)
		return saveSchedule(tx, fights, retimed)
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	return count, nil
}

func (s *FightService) parseClock(clock string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return time.Time{}, ErrInvalidStartTime
	}
	limits := []int{23, 59, 59}
	values := make([]int, 3)
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 || v > limits[i] {
			return time.Time{}, ErrInvalidStartTime
		}
		values[i] = v
	}
	now := s.now().In(s.settings.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), values[0], values[1], values[2], 0, s.settings.Location), nil
}

// Helpers

func (s *FightService) buildFight(req models.CreateFightRequest) (models.Fight, error) {
	fightType, err := models.ParseFightType(req.FightType)
	if err != nil {
		return models.Fight{}, fmt.Errorf("%w: %v", ErrInvalidFight, err)
	}

	fight := models.Fight{
		ID:            uuid.NewString(),
		FighterA:      strings.TrimSpace(req.FighterA),
		FighterAClub:  strings.TrimSpace(req.FighterAClub),
		FighterB:      strings.TrimSpace(req.FighterB),
		FighterBClub:  strings.TrimSpace(req.FighterBClub),
		WeightClass:   req.WeightClass,
		Duration:      req.Duration,
		RoundDuration: req.RoundDuration,
		NbRounds:      req.NbRounds,
		RestTime:      req.RestTime,
		FightType:     fightType,
	}
	if req.RoundDuration != nil && req.NbRounds != nil {
		rest := 0
		if req.RestTime != nil {
			rest = *req.RestTime
		}
		fight.Duration = models.RoundBasedDuration(*req.RoundDuration, *req.NbRounds, rest)
	}
	if err := s.validate(&fight); err != nil {
		return models.Fight{}, err
	}
	return fight, nil
}

func (s *FightService) applyUpdate(fight *models.Fight, req models.UpdateFightRequest) error {
	if req.FighterA != nil {
		fight.FighterA = strings.TrimSpace(*req.FighterA)
	}
	if req.FighterAClub != nil {
		fight.FighterAClub = strings.TrimSpace(*req.FighterAClub)
	}
	if req.FighterB != nil {
		fight.FighterB = strings.TrimSpace(*req.FighterB)
	}
	if req.FighterBClub != nil {
		fight.FighterBClub = strings.TrimSpace(*req.FighterBClub)
	}
	if req.WeightClass != nil {
		fight.WeightClass = *req.WeightClass
	}
	if req.Duration != nil {
		fight.Duration = *req.Duration
		fight.RoundDuration = nil
		fight.NbRounds = nil
		fight.RestTime = nil
	}
	if req.FightType != nil {
		fightType, err := models.ParseFightType(*req.FightType)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFight, err)
		}
		fight.FightType = fightType
	}
	return s.validate(fight)
}

func (s *FightService) validate(fight *models.Fight) error {
	for label, name := range map[string]string{
		"fighter_a":      fight.FighterA,
		"fighter_a_club": fight.FighterAClub,
		"fighter_b":      fight.FighterB,
		"fighter_b_club": fight.FighterBClub,
	} {
		if name == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidFight, label)
		}
		if len(name) > 100 {
			return fmt.Errorf("%w: %s is longer than 100 characters", ErrInvalidFight, label)
		}
	}
	if fight.WeightClass <= 0 {
		return fmt.Errorf("%w: weight_class must be positive", ErrInvalidFight)
	}
	if fight.Duration <= 0 || fight.Duration > s.settings.MaxDurationMinutes {
		return fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrInvalidFight, s.settings.MaxDurationMinutes)
	}
	return nil
}

func (s *FightService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("status cache invalidate failed: %v", err)
	}
}

// withTx runs fn in a transaction, rolling back on error or panic.
func (s *FightService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func (s *FightService) load(tx *gorm.DB) ([]models.Fight, error) {
	var fights []models.Fight
	if err := tx.Order("fight_number ASC").Find(&fights).Error; err != nil {
		return nil, err
	}
	return fights, nil
}

// loadWith loads the card and locates one fight in it.
func (s *FightService) loadWith(tx *gorm.DB, id string) ([]models.Fight, int, error) {
	fights, err := s.load(tx)
	if err != nil {
		return nil, -1, err
	}
	for i := range fights {
		if fights[i].ID == id {
			return fights, i, nil
		}
	}
	return nil, -1, ErrFightNotFound
}

func findByID(fights []models.Fight, id string) models.Fight {
	for _, f := range fights {
		if f.ID == id {
			return f
		}
	}
	return models.Fight{}
}

// saveSchedule writes the number and expected start of every fight that
// differs between before and after. Fights absent from before are skipped.
func saveSchedule(tx *gorm.DB, before, after []models.Fight) error {
	prev := make(map[string]models.Fight, len(before))
	for _, f := range before {
		prev[f.ID] = f
	}
	for _, f := range after {
		p, ok := prev[f.ID]
		if !ok {
			continue
		}
		if p.FightNumber == f.FightNumber && p.ExpectedStart.Equal(f.ExpectedStart) {
			continue
		}
		err := tx.Model(&models.Fight{}).
			Where("id = ?", f.ID).
			Updates(map[string]interface{}{
				"fight_number":   f.FightNumber,
				"expected_start": f.ExpectedStart,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
