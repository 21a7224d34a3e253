package strategy

import (
	"strings"

	"OptionStrat/internal/domain/models"
	domsvc "OptionStrat/internal/domain/service"
)

// Template names known to the calculator table.
const (
	BullPutSpread  = "Bull Put Spread"
	IronCondor     = "Iron Condor"
	CashSecuredPut = "Cash Secured Put"
	CoveredCall    = "Covered Call"
	BullCallSpread = "Bull Call Spread"
	BearPutSpread  = "Bear Put Spread"
	LongStraddle   = "Long Straddle"
	ShortStrangle  = "Short Strangle"
)

// Catalog is the read-only, ordered set of strategy templates.
type Catalog struct {
	templates []models.StrategyTemplate
	bySlug    map[string]int
}

// NewCatalog builds a catalog from the given templates, preserving order.
func NewCatalog(templates []models.StrategyTemplate) *Catalog {
	c := &Catalog{
		templates: make([]models.StrategyTemplate, len(templates)),
		bySlug:    make(map[string]int, len(templates)),
	}
	copy(c.templates, templates)
	for i, t := range c.templates {
		c.bySlug[Slug(t.Name)] = i
	}
	return c
}

// DefaultCatalog returns the eight built-in templates.
func DefaultCatalog() *Catalog {
	return NewCatalog([]models.StrategyTemplate{
		{Name: BullPutSpread, Type: models.Bullish, Complexity: models.Intermediate, Confidence: models.ConfidenceRange{Min: 50, Max: 85}},
		{Name: IronCondor, Type: models.Neutral, Complexity: models.Advanced, Confidence: models.ConfidenceRange{Min: 40, Max: 70}},
		{Name: CashSecuredPut, Type: models.Bullish, Complexity: models.Beginner, Confidence: models.ConfidenceRange{Min: 45, Max: 75}},
		{Name: CoveredCall, Type: models.Bullish, Complexity: models.Beginner, Confidence: models.ConfidenceRange{Min: 50, Max: 80}},
		{Name: BullCallSpread, Type: models.Bullish, Complexity: models.Intermediate, Confidence: models.ConfidenceRange{Min: 55, Max: 78}},
		{Name: BearPutSpread, Type: models.Bearish, Complexity: models.Intermediate, Confidence: models.ConfidenceRange{Min: 45, Max: 75}},
		{Name: LongStraddle, Type: models.Volatility, Complexity: models.Intermediate, Confidence: models.ConfidenceRange{Min: 40, Max: 65}},
		{Name: ShortStrangle, Type: models.Neutral, Complexity: models.Advanced, Confidence: models.ConfidenceRange{Min: 50, Max: 70}},
	})
}

// Templates returns a copy of the templates in catalog order.
func (c *Catalog) Templates() []models.StrategyTemplate {
	out := make([]models.StrategyTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// Head returns at most n templates from the front of the catalog.
func (c *Catalog) Head(n int) []models.StrategyTemplate {
	if n < 0 {
		n = 0
	}
	if n > len(c.templates) {
		n = len(c.templates)
	}
	out := make([]models.StrategyTemplate, n)
	copy(out, c.templates[:n])
	return out
}

// Lookup finds a template by its slug (e.g. "bull_put_spread").
func (c *Catalog) Lookup(slug string) (models.StrategyTemplate, bool) {
	i, ok := c.bySlug[strings.ToLower(slug)]
	if !ok {
		return models.StrategyTemplate{}, false
	}
	return c.templates[i], true
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.templates) }

// Slug lowercases a template name and replaces spaces with underscores.
func Slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// RecommendationID derives the stable id of a template evaluated for a ticker.
func RecommendationID(name, ticker string) string {
	return Slug(name) + "_" + ticker
}

// ParseRecommendationID splits "<slug>_<TICKER>" at the last underscore.
func ParseRecommendationID(id string) (slug, ticker string, ok bool) {
	i := strings.LastIndex(id, "_")
	if i <= 0 || i == len(id)-1 {
		return "", "", false
	}
	return id[:i], id[i+1:], true
}

var _ domsvc.Catalog = (*Catalog)(nil)
