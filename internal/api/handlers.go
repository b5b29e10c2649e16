package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/collection"
)

func (s *Server) listSets(c *gin.Context) {
	okJSON(c, catalog.SortedSets(c.Request.Context(), s.Catalog, s.Log))
}

func (s *Server) setCards(c *gin.Context) {
	okJSON(c, catalog.SetCards(c.Request.Context(), s.Catalog, c.Param("id"), s.Log))
}

func (s *Server) preparePack(c *gin.Context) {
	s.Packs.Prepare(c.Param("id"))
	c.JSON(http.StatusAccepted, Response{Code: 0, Msg: "preparing"})
}

func (s *Server) openPack(c *gin.Context) {
	setID := c.Param("id")
	p, err := s.Packs.Open(c.Request.Context(), setID)
	if err != nil {
		status, msg := drawStatus(err)
		s.Log.Warn("open pack failed", zap.String("set_id", setID), zap.Int("status", status), zap.Error(err))
		fail(c, status, msg)
		return
	}
	okJSON(c, p)
}

func (s *Server) simulate(c *gin.Context) {
	trials, err := strconv.Atoi(c.DefaultQuery("trials", "1000"))
	if err != nil || trials <= 0 || trials > s.MaxTrials {
		fail(c, http.StatusBadRequest, "trials must be between 1 and "+strconv.Itoa(s.MaxTrials))
		return
	}
	res, err := s.Packs.Simulate(c.Request.Context(), c.Param("id"), trials)
	if err != nil {
		status, msg := drawStatus(err)
		fail(c, status, msg)
		return
	}
	okJSON(c, res)
}

func (s *Server) collection(c *gin.Context) {
	okJSON(c, s.Store.Snapshot())
}

// recordRequest is the body of POST /collection/record.
type recordRequest struct {
	Cards []catalog.Card      `json:"cards" binding:"required"`
	Set   *collection.SetInfo `json:"set"`
}

func (s *Server) record(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	st, err := s.Store.Record(c.Request.Context(), req.Cards, req.Set)
	if err != nil {
		fail(c, http.StatusInternalServerError, "collection not saved")
		return
	}
	okJSON(c, st)
}

type cardOwnership struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
	Owned bool   `json:"owned"`
}

func (s *Server) cardCount(c *gin.Context) {
	id := c.Param("id")
	n := s.Store.CardCount(id)
	okJSON(c, cardOwnership{ID: id, Count: n, Owned: n > 0})
}

type progressReply struct {
	collection.Progress
	Percent int `json:"percent"`
}

func (s *Server) progress(c *gin.Context) {
	cards := catalog.SetCards(c.Request.Context(), s.Catalog, c.Param("id"), s.Log)
	ids := make([]string, len(cards))
	for i, card := range cards {
		ids[i] = card.ID
	}
	p := s.Store.Progress(ids)
	okJSON(c, progressReply{Progress: p, Percent: p.Percent()})
}

func (s *Server) history(c *gin.Context) {
	okJSON(c, gin.H{
		"entries": s.Store.History(),
		"summary": s.Store.HistorySummary(),
	})
}
