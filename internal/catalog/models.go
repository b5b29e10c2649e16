package catalog

import "time"

// CardSummary is the short card form listed inside a set.
type CardSummary struct {
	ID      string `json:"id"`
	LocalID string `json:"localId,omitempty"`
	Name    string `json:"name"`
	Image   string `json:"image,omitempty"`
}

// CardmarketPrice holds the Cardmarket price point for a card (EUR).
type CardmarketPrice struct {
	Avg   float64 `json:"avg"`
	Low   float64 `json:"low,omitempty"`
	Trend float64 `json:"trend,omitempty"`
	Unit  string  `json:"unit,omitempty"`
}

// Pricing groups market prices; every source is optional.
type Pricing struct {
	Cardmarket *CardmarketPrice `json:"cardmarket,omitempty"`
}

// SetRef is the set a card belongs to, as embedded in card details.
type SetRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// Card is a fully resolved card. It is never mutated after it is fetched.
type Card struct {
	ID       string   `json:"id"`
	LocalID  string   `json:"localId,omitempty"`
	Name     string   `json:"name"`
	Image    string   `json:"image,omitempty"`
	Category string   `json:"category,omitempty"`
	Rarity   string   `json:"rarity,omitempty"`
	Pricing  *Pricing `json:"pricing,omitempty"`
	Set      *SetRef  `json:"set,omitempty"`
}

// MarketPrice returns the average Cardmarket price, or 0 when unknown.
func (c Card) MarketPrice() float64 {
	if c.Pricing == nil || c.Pricing.Cardmarket == nil {
		return 0
	}
	return c.Pricing.Cardmarket.Avg
}

// FromSummary builds a card with only the listing fields and the given rarity.
func FromSummary(s CardSummary, rarity string) Card {
	return Card{
		ID:      s.ID,
		LocalID: s.LocalID,
		Name:    s.Name,
		Image:   s.Image,
		Rarity:  rarity,
	}
}

// CardCount is the number of cards a set declares.
type CardCount struct {
	Total    int `json:"total"`
	Official int `json:"official"`
}

// Booster is one booster artwork variant of a set.
type Booster struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ArtworkFront string `json:"artwork_front,omitempty"`
	ArtworkBack  string `json:"artwork_back,omitempty"`
}

// SetSummary is an entry of the set listing.
type SetSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo,omitempty"`
	Symbol    string    `json:"symbol,omitempty"`
	CardCount CardCount `json:"cardCount"`
}

// Set is the full set detail including its card list.
type Set struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Logo        string        `json:"logo,omitempty"`
	Symbol      string        `json:"symbol,omitempty"`
	ReleaseDate string        `json:"releaseDate,omitempty"`
	CardCount   CardCount     `json:"cardCount"`
	Boosters    []Booster     `json:"boosters,omitempty"`
	Cards       []CardSummary `json:"cards,omitempty"`
}

// releaseDateLayouts are tried in order when parsing Set.ReleaseDate.
var releaseDateLayouts = []string{"2006-01-02", time.RFC3339}

// Released parses the release date. ok is false when it is missing or unparseable.
func (s Set) Released() (t time.Time, ok bool) {
	if s.ReleaseDate == "" {
		return time.Time{}, false
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, s.ReleaseDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Summary drops the card list from a set detail.
func (s Set) Summary() SetSummary {
	return SetSummary{ID: s.ID, Name: s.Name, Logo: s.Logo, Symbol: s.Symbol, CardCount: s.CardCount}
}
