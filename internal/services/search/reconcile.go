package search

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/rules"
)

const (
	SortByMatchScore = "matchScore"
	SortByCreatedAt  = "createdAt"
	SortByAge        = "age"
	SortByHeight     = "height"
	SortByName       = "name"
	SortByLocation   = "location"
	SortByEducation  = "education"
	SortByOccupation = "occupation"
	SortByUsername   = "username"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ReconcileParams is the full set of inputs the view pipeline depends
// on. Two calls with equal params over the same result set must produce
// identical output.
type ReconcileParams struct {
	Criteria      model.SearchCriteria
	MinMatchScore int
	SortBy        string
	SortOrder     string
}

// Reconcile derives the displayable view from accumulated raw results.
// It never mutates its input. Direct profile lookups bypass filtering:
// the user asked for that exact profile, so it is always shown.
func Reconcile(results []model.SearchResultUser, params ReconcileParams) []model.SearchResultUser {
	out := make([]model.SearchResultUser, 0, len(results))

	bypass := params.Criteria.ProfileID != ""
	for _, user := range results {
		if !bypass {
			if !rules.GenderMatches(params.Criteria.Gender, user.Gender) {
				continue
			}
			if user.Score() < params.MinMatchScore {
				continue
			}
		}
		out = append(out, user)
	}

	sortResults(out, params.SortBy, params.SortOrder)

	return dedupeByUsername(out)
}

func sortResults(results []model.SearchResultUser, sortBy, sortOrder string) {
	if sortBy == "" {
		return
	}

	desc := strings.EqualFold(sortOrder, SortDesc)
	if sortOrder == "" {
		// Score and recency default to best-first.
		desc = sortBy == SortByMatchScore || sortBy == SortByCreatedAt
	}

	less := func(a, b model.SearchResultUser) bool {
		switch sortBy {
		case SortByMatchScore:
			return a.Score() < b.Score()
		case SortByCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortByAge:
			return a.Age < b.Age
		case SortByHeight:
			return heightInches(a.Height) < heightInches(b.Height)
		case SortByName:
			return displayName(a) < displayName(b)
		case SortByLocation:
			return strings.ToLower(a.Location) < strings.ToLower(b.Location)
		case SortByEducation:
			return strings.ToLower(a.Education) < strings.ToLower(b.Education)
		case SortByOccupation:
			return strings.ToLower(a.Workplace) < strings.ToLower(b.Workplace)
		default:
			return a.Username < b.Username
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if desc {
			return less(results[j], results[i])
		}
		return less(results[i], results[j])
	})
}

func heightInches(height string) int {
	inches, ok := rules.ParseHeight(height)
	if !ok {
		return 0
	}
	return inches
}

func displayName(user model.SearchResultUser) string {
	return strings.ToLower(strings.TrimSpace(user.FirstName + " " + user.LastName))
}

func dedupeByUsername(results []model.SearchResultUser) []model.SearchResultUser {
	seen := make(map[string]struct{}, len(results))
	out := results[:0]
	for _, user := range results {
		if _, ok := seen[user.Username]; ok {
			continue
		}
		seen[user.Username] = struct{}{}
		out = append(out, user)
	}
	return out
}

type reconcileKey struct {
	version       uint64
	criteria      string
	minMatchScore int
	sortBy        string
	sortOrder     string
}

// Reconciler memoizes Reconcile per session. The version counter stands
// in for the raw result slice: any mutation bumps it, so a matching key
// guarantees the cached view is still valid.
type Reconciler struct {
	mu     sync.Mutex
	key    reconcileKey
	cached []model.SearchResultUser
	valid  bool
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

func (r *Reconciler) View(version uint64, results []model.SearchResultUser, params ReconcileParams) []model.SearchResultUser {
	key := reconcileKey{
		version:       version,
		criteria:      criteriaFingerprint(params.Criteria),
		minMatchScore: params.MinMatchScore,
		sortBy:        params.SortBy,
		sortOrder:     params.SortOrder,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.valid && r.key == key {
		return r.cached
	}

	r.cached = Reconcile(results, params)
	r.key = key
	r.valid = true
	return r.cached
}

func criteriaFingerprint(criteria model.SearchCriteria) string {
	payload, err := json.Marshal(criteria)
	if err != nil {
		return ""
	}
	return string(payload)
}
