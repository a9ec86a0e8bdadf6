package core

import (
	"log"

	"fight-manager-api/packages/core/cron"
	"fight-manager-api/packages/core/handlers"
	"fight-manager-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Module struct {
	FightHandler  *handlers.FightHandler
	FightService  *services.FightService
	ImportHandler *handlers.ImportHandler
	ImportService *services.ImportService
	PublicHandler *handlers.PublicHandler
	StatsHandler  *handlers.StatsHandler
	Scheduler     *cron.Scheduler
	adminOnly     []gin.HandlerFunc
}

// NewModule wires the fight services and handlers. adminOnly guards every
// mutating route; purger may be nil to skip the token purge job.
func NewModule(db *gorm.DB, cache services.StatusCache, settings services.FightSettings, adminOnly []gin.HandlerFunc, purger cron.TokenPurger) *Module {
	fightService := services.NewFightService(db, cache, settings)
	fightHandler := handlers.NewFightHandler(fightService)

	importService := services.NewImportService(fightService)
	importHandler := handlers.NewImportHandler(importService, fightService, settings.Location)

	publicHandler := handlers.NewPublicHandler(fightService)
	statsHandler := handlers.NewStatsHandler(services.NewStatsService(db))

	scheduler := cron.NewScheduler(fightService, purger)

	return &Module{
		FightHandler:  fightHandler,
		FightService:  fightService,
		ImportHandler: importHandler,
		ImportService: importService,
		PublicHandler: publicHandler,
		StatsHandler:  statsHandler,
		Scheduler:     scheduler,
		adminOnly:     adminOnly,
	}
}

func (m *Module) SetupRoutes(r *gin.Engine) {
	fights := r.Group("/fights")
	{
		fights.GET("", m.FightHandler.GetFights)
		fights.GET("/ongoing", m.FightHandler.GetOngoing)
		fights.GET("/ready", m.FightHandler.GetReady)
		fights.GET("/next", m.FightHandler.GetNext)
		fights.GET("/past", m.FightHandler.GetPast)
		fights.GET("/status", m.FightHandler.GetStatus)
		fights.GET("/stats", m.StatsHandler.GetStats)
		fights.GET("/export", m.ImportHandler.ExportFights)
	}

	admin := r.Group("/fights", m.adminOnly...)
	{
		admin.POST("/import", m.ImportHandler.ImportFights)
		admin.POST("/start-time", m.FightHandler.SetStartTime)
		admin.POST("/add", m.FightHandler.AddFight)
		admin.PATCH("/:id", m.FightHandler.UpdateFight)
		admin.PATCH("/:id/number/:number", m.FightHandler.ChangeNumber)
		admin.POST("/:id/start", m.FightHandler.StartFight)
		admin.POST("/:id/end", m.FightHandler.EndFight)
		admin.POST("/:id/cancel", m.FightHandler.CancelFight)
		admin.POST("/:id/reset", m.FightHandler.ResetFight)
		admin.DELETE("/:id", m.FightHandler.DeleteFight)
		admin.DELETE("", m.FightHandler.ClearFights)
	}

	public := r.Group("/public")
	{
		public.GET("/board", m.PublicHandler.GetBoard)
		public.GET("/ongoing", m.PublicHandler.GetOngoing)
		public.GET("/ready", m.PublicHandler.GetReady)
		public.GET("/next", m.PublicHandler.GetNext)
		public.GET("/past", m.PublicHandler.GetPast)
	}
}

// StartScheduler starts the cache warm and token purge jobs
func (m *Module) StartScheduler() error {
	log.Println("Starting core module scheduler...")
	return m.Scheduler.Start()
}

// StopScheduler stops the cron scheduler
func (m *Module) StopScheduler() {
	log.Println("Stopping core module scheduler...")
	m.Scheduler.Stop()
}
