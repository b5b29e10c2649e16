// Package api is the HTTP surface the UI talks to.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/collection"
	"github.com/xtding233/pack-sim/internal/pack"
)

// Server carries the handlers' dependencies.
type Server struct {
	Catalog catalog.Source
	Packs   *pack.Service
	Store   *collection.Store
	Log     *zap.Logger
	// MaxTrials caps the simulate endpoint.
	MaxTrials int
}

// NewRouter builds the engine. origins lists allowed CORS origins; "*" or
// empty allows all.
func NewRouter(s *Server, origins []string) *gin.Engine {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	if s.MaxTrials <= 0 {
		s.MaxTrials = 10000
	}
	r := gin.New()
	r.Use(RequestID())
	r.Use(Recover(s.Log))
	r.Use(RequestLog(s.Log))
	r.Use(cors.New(corsConfig(origins)))

	r.GET("/healthz", func(c *gin.Context) { okJSON(c, gin.H{"status": "up"}) })

	v1 := r.Group("/api/v1")
	{
		v1.GET("/sets", s.listSets)
		v1.GET("/sets/:id/cards", s.setCards)
		v1.POST("/sets/:id/prepare", s.preparePack)
		v1.POST("/sets/:id/open", s.openPack)
		v1.GET("/sets/:id/simulate", s.simulate)

		v1.GET("/collection", s.collection)
		v1.POST("/collection/record", s.record)
		v1.GET("/collection/cards/:id", s.cardCount)
		v1.GET("/collection/sets/:id/progress", s.progress)

		v1.GET("/history", s.history)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", requestIDHeader},
		MaxAge:        1 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
