package fixtures

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	authModels "fight-manager-api/packages/auth/models"
	authUtils "fight-manager-api/packages/auth/utils"
	"fight-manager-api/packages/core/models"
	"fight-manager-api/packages/core/services"

	"gorm.io/gorm"
)

const (
	DemoViewerUsername = "scoreboard"
	DemoViewerPassword = "scoreboard"
)

var (
	firstNames = []string{
		"Lina", "Hugo", "Sofia", "Malik", "Jade", "Nolan", "Yasmine", "Théo",
		"Inès", "Rayan", "Chloé", "Mathis", "Sarah", "Adam", "Léa", "Karim",
	}
	lastNames = []string{
		"Martin", "Bernard", "Diallo", "Moreau", "Nguyen", "Lefebvre", "Garcia",
		"Benali", "Roux", "Fontaine", "Mercier", "Da Silva",
	}
	clubs = []string{
		"Boxing Club Villeurbanne", "Lyon Muay Thai", "Team Croix-Rousse",
		"Gones Fight Academy", "Ring Olympique Vénissieux", "Part-Dieu Grappling",
	}
	weightClasses = []int{52, 57, 60, 63, 67, 71, 75, 81, 86, 91}
)

type Fixtures struct {
	db     *gorm.DB
	fights *services.FightService
	rng    *rand.Rand
}

// NewFixtures builds a generator that adds fights through the fight service
// so numbering and expected start times follow the normal rules.
func NewFixtures(db *gorm.DB, fights *services.FightService, seed int64) *Fixtures {
	return &Fixtures{
		db:     db,
		fights: fights,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// GenerateTestData creates a fight card of count bouts and a read-only viewer
// account for scoreboard screens.
func (f *Fixtures) GenerateTestData(ctx context.Context, count int) error {
	log.Println("Starting fixtures generation...")

	if err := f.generateViewer(); err != nil {
		return fmt.Errorf("failed to generate viewer: %w", err)
	}

	created, err := f.generateFights(ctx, count)
	if err != nil {
		return fmt.Errorf("failed to generate fights: %w", err)
	}

	log.Println("Fixtures generated successfully!")
	log.Printf("Created %d fights and the %q viewer account", created, DemoViewerUsername)
	return nil
}

func (f *Fixtures) generateViewer() error {
	var existing authModels.User
	if err := f.db.Where("username = ?", DemoViewerUsername).First(&existing).Error; err == nil {
		return nil
	}

	hashed, err := authUtils.HashPassword(DemoViewerPassword)
	if err != nil {
		return err
	}
	viewer := authModels.User{
		Username: DemoViewerUsername,
		Password: hashed,
		Role:     authModels.RoleViewer,
		Enabled:  true,
	}
	return f.db.Create(&viewer).Error
}

func (f *Fixtures) generateFights(ctx context.Context, count int) (int, error) {
	types := models.GetAllFightTypes()

	for i := 0; i < count; i++ {
		clubA := f.pick(clubs)
		clubB := f.pick(clubs)
		for clubB == clubA {
			clubB = f.pick(clubs)
		}

		req := models.CreateFightRequest{
			FighterA:     f.fighterName(),
			FighterAClub: clubA,
			FighterB:     f.fighterName(),
			FighterBClub: clubB,
			WeightClass:  weightClasses[f.rng.Intn(len(weightClasses))],
			FightType:    string(types[f.rng.Intn(len(types))]),
		}

		// Every third bout is described by rounds instead of a flat duration.
		if i%3 == 2 {
			roundDuration, nbRounds, restTime := 2, 3, 1
			req.RoundDuration = &roundDuration
			req.NbRounds = &nbRounds
			req.RestTime = &restTime
		} else {
			req.Duration = 6 + f.rng.Intn(7)
		}

		if _, err := f.fights.Add(ctx, req); err != nil {
			return i, fmt.Errorf("fight %d: %w", i+1, err)
		}
	}
	return count, nil
}

// ClearAllData removes fights, refresh tokens and the demo viewer. Admin
// accounts are kept.
func (f *Fixtures) ClearAllData(ctx context.Context) error {
	log.Println("Clearing all fixture data...")

	if _, err := f.fights.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear fights: %w", err)
	}

	db := f.db.WithContext(ctx)
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&authModels.RefreshToken{}).Error; err != nil {
		return fmt.Errorf("failed to clear refresh tokens: %w", err)
	}
	if err := db.Where("username = ?", DemoViewerUsername).Delete(&authModels.User{}).Error; err != nil {
		return fmt.Errorf("failed to clear viewer: %w", err)
	}

	log.Println("All fixture data cleared!")
	return nil
}

func (f *Fixtures) fighterName() string {
	return f.pick(firstNames) + " " + f.pick(lastNames)
}

func (f *Fixtures) pick(values []string) string {
	return values[f.rng.Intn(len(values))]
}
