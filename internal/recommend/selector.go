// Package recommend selects catalog items for an assigned persona and builds
// per-item rationales citing live signal values.
package recommend

import (
	"hash/fnv"
	"sort"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-insights/internal/catalog"
	"github.com/dvloznov/finance-insights/internal/domain"
)

// Candidate count bounds per run.
const (
	maxEducationItems = 5
	minEducationItems = 3
	maxPartnerOffers  = 3
)

// Selector picks candidates from a catalog. Selection is deterministic for a
// given (user, persona, catalog): the same user always sees the same set
// until the catalog changes.
type Selector struct {
	cat *catalog.Catalog
}

// NewSelector creates a selector over the given catalog.
func NewSelector(cat *catalog.Catalog) *Selector {
	return &Selector{cat: cat}
}

// Select returns 3-5 education items and 1-3 partner offers tagged for the
// assigned persona. A thin catalog yields fewer items rather than an error.
func (s *Selector) Select(assignment domain.PersonaAssignment, signals *domain.SignalSet) []domain.RecommendationCandidate {
	education := s.pick(assignment, domain.CandidateEducation, maxEducationItems)
	offers := s.pick(assignment, domain.CandidatePartnerOffer, maxPartnerOffers)

	candidates := make([]domain.RecommendationCandidate, 0, len(education)+len(offers))
	for _, item := range append(education, offers...) {
		candidates = append(candidates, domain.RecommendationCandidate{
			CandidateID: uuid.NewString(),
			Type:        item.Type,
			CatalogID:   item.ID,
			PersonaID:   assignment.PersonaID,
			Title:       item.Title,
			Body:        item.Body,
			Rationale:   buildRationale(assignment, signals, item),
		})
	}
	return candidates
}

// pick orders the persona's items by a seeded hash and takes the first max.
func (s *Selector) pick(assignment domain.PersonaAssignment, typ domain.CandidateType, max int) []catalog.Item {
	items := s.cat.ForPersona(assignment.PersonaID, typ)

	seed := selectionSeed(assignment.UserID, assignment.PersonaID)
	sort.SliceStable(items, func(i, j int) bool {
		hi, hj := itemRank(seed, items[i].ID), itemRank(seed, items[j].ID)
		if hi != hj {
			return hi < hj
		}
		return items[i].ID < items[j].ID
	})

	if len(items) > max {
		items = items[:max]
	}
	return items
}

// selectionSeed derives the stable per-user, per-persona ordering seed.
func selectionSeed(userID string, personaID domain.PersonaID) uint64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{':', byte(personaID)})
	return h.Sum64()
}

func itemRank(seed uint64, itemID string) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(seed >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(itemID))
	return h.Sum64()
}
