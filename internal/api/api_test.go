package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/catalog/catalogtest"
	"github.com/xtding233/pack-sim/internal/collection"
	"github.com/xtding233/pack-sim/internal/gacha"
	"github.com/xtding233/pack-sim/internal/pack"
	"github.com/xtding233/pack-sim/internal/storage"
)

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	fake   *catalogtest.Fake
	store  *collection.Store
	router *gin.Engine
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{fake: catalogtest.New(), now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}

	var cards []catalog.Card
	for i := 0; i < 12; i++ {
		label := "Común"
		switch {
		case i >= 10:
			label = "Rara Holo"
		case i >= 6:
			label = "Poco común"
		}
		cards = append(cards, catalog.Card{
			ID:      fmt.Sprintf("sv1-%d", i),
			Name:    fmt.Sprintf("card %d", i),
			Rarity:  label,
			Pricing: &catalog.Pricing{Cardmarket: &catalog.CardmarketPrice{Avg: 0.25}},
		})
	}
	f.fake.AddSet(catalog.Set{ID: "sv1", Name: "Escarlata y Púrpura", Logo: "sv1.png", ReleaseDate: "2023-03-31"}, cards...)
	f.fake.AddSet(catalog.Set{ID: "base1", Name: "Base", Logo: "base.png", ReleaseDate: "1999-01-09"})
	f.fake.AddSet(catalog.Set{ID: "nologo", Name: "No logo"})

	f.store = collection.NewStore(storage.NewMemory(), collection.WithClock(func() time.Time { return f.now }))
	f.store.Load(context.Background())

	packs := pack.NewService(f.fake, pack.WithRNG(gacha.NewSeededRNG(1)))
	f.router = NewRouter(&Server{Catalog: f.fake, Packs: packs, Store: f.store}, nil)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

// data re-decodes the envelope payload into out.
func data(t *testing.T, resp Response, out interface{}) {
	t.Helper()
	b, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, out))
}

func TestListSets(t *testing.T) {
	f := newFixture(t)
	w, resp := f.do(t, http.MethodGet, "/api/v1/sets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var sets []catalog.Set
	data(t, resp, &sets)
	require.Len(t, sets, 2)
	assert.Equal(t, "sv1", sets[0].ID)
	assert.Equal(t, "base1", sets[1].ID)
}

func TestListSets_CatalogDown(t *testing.T) {
	f := newFixture(t)
	f.fake.ListErr = catalogtest.ErrUnavailable
	w, resp := f.do(t, http.MethodGet, "/api/v1/sets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sets []catalog.Set
	data(t, resp, &sets)
	assert.Empty(t, sets)
}

func TestOpenPack(t *testing.T) {
	f := newFixture(t)
	w, resp := f.do(t, http.MethodPost, "/api/v1/sets/sv1/open", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var p gacha.Pack
	data(t, resp, &p)
	assert.Len(t, p.Cards, gacha.PackSize)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestOpenPack_Errors(t *testing.T) {
	f := newFixture(t)

	w, resp := f.do(t, http.MethodPost, "/api/v1/sets/base1/open", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "pack unavailable", resp.Msg)

	w, resp = f.do(t, http.MethodPost, "/api/v1/sets/missing/open", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "set not found", resp.Msg)

	f.fake.SetErr["sv1"] = catalogtest.ErrUnavailable
	w, resp = f.do(t, http.MethodPost, "/api/v1/sets/sv1/open", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "catalog unavailable", resp.Msg)
}

func TestPrepareThenOpen(t *testing.T) {
	f := newFixture(t)
	w, _ := f.do(t, http.MethodPost, "/api/v1/sets/sv1/prepare", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	w, resp := f.do(t, http.MethodPost, "/api/v1/sets/sv1/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p gacha.Pack
	data(t, resp, &p)
	assert.Len(t, p.Cards, gacha.PackSize)
}

func TestRecordAndQueries(t *testing.T) {
	f := newFixture(t)
	cards := []catalog.Card{
		{ID: "sv1-0", Name: "card 0", Rarity: "Común", Pricing: &catalog.Pricing{Cardmarket: &catalog.CardmarketPrice{Avg: 0.25}}},
		{ID: "sv1-10", Name: "card 10", Rarity: "Rara Holo", Pricing: &catalog.Pricing{Cardmarket: &catalog.CardmarketPrice{Avg: 1.5}}},
	}
	body := gin.H{"cards": cards, "set": gin.H{"name": "Escarlata y Púrpura", "logo": "sv1.png"}}

	w, resp := f.do(t, http.MethodPost, "/api/v1/collection/record", body)
	require.Equal(t, http.StatusOK, w.Code)
	var st collection.State
	data(t, resp, &st)
	assert.Equal(t, 1, st.Inventory["sv1-10"])
	require.Len(t, st.History, 1)
	assert.Equal(t, "1.75", st.History[0].TotalValue)

	// double submit
	f.now = f.now.Add(300 * time.Millisecond)
	_, resp = f.do(t, http.MethodPost, "/api/v1/collection/record", body)
	data(t, resp, &st)
	assert.Len(t, st.History, 1)

	_, resp = f.do(t, http.MethodGet, "/api/v1/collection/cards/sv1-10", nil)
	var own cardOwnership
	data(t, resp, &own)
	assert.Equal(t, cardOwnership{ID: "sv1-10", Count: 1, Owned: true}, own)

	_, resp = f.do(t, http.MethodGet, "/api/v1/collection/sets/sv1/progress", nil)
	var prog progressReply
	data(t, resp, &prog)
	assert.Equal(t, 2, prog.Collected)
	assert.Equal(t, 12, prog.Total)
	assert.Equal(t, 17, prog.Percent)

	_, resp = f.do(t, http.MethodGet, "/api/v1/history", nil)
	var hist struct {
		Entries []collection.HistoryEntry `json:"entries"`
		Summary struct {
			Packs int    `json:"packs"`
			Total string `json:"total"`
		} `json:"summary"`
	}
	data(t, resp, &hist)
	assert.Len(t, hist.Entries, 1)
	assert.Equal(t, 1, hist.Summary.Packs)
	assert.Equal(t, "1.75", hist.Summary.Total)

	_, resp = f.do(t, http.MethodGet, "/api/v1/collection", nil)
	data(t, resp, &st)
	assert.Len(t, st.Inventory, 2)
}

func TestRecord_BadBody(t *testing.T) {
	f := newFixture(t)
	w, _ := f.do(t, http.MethodPost, "/api/v1/collection/record", gin.H{"set": gin.H{"name": "x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulate(t *testing.T) {
	f := newFixture(t)
	w, resp := f.do(t, http.MethodGet, "/api/v1/sets/sv1/simulate?trials=50", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res gacha.SimResult
	data(t, resp, &res)
	assert.Equal(t, 50, res.Trials)

	w, _ = f.do(t, http.MethodGet, "/api/v1/sets/sv1/simulate?trials=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestRecoverMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(Recover(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
