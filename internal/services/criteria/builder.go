package criteria

import (
	"errors"
	"strings"
	"time"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/rules"
	"github.com/rajsir217-oss/profiledata-gateway/internal/upstream"
)

var ErrValidation = errors.New("validation error")

// Default age window around the viewer's own age, applied when the
// profile carries no partner preference at all. Grooms are typically
// matched slightly younger and brides slightly older.
const (
	maleYoungerOffset = -5
	maleOlderOffset   = 1

	femaleYoungerOffset = -1
	femaleOlderOffset   = 5
)

// Height window in inches around the viewer's own height, mirroring the
// age heuristic when no height preference is stored.
const (
	maleShorterOffset = -5
	maleTallerOffset  = 1

	femaleShorterOffset = -1
	femaleTallerOffset  = 5
)

type Config struct {
	AgeClampMin int
	AgeClampMax int
}

// Builder derives the default search criteria for a viewer and
// normalizes user-edited criteria before execution.
type Builder struct {
	cfg Config
	now func() time.Time
}

func NewBuilder(cfg Config) *Builder {
	if cfg.AgeClampMin <= 0 {
		cfg.AgeClampMin = 19
	}
	if cfg.AgeClampMax <= 0 {
		cfg.AgeClampMax = 100
	}
	return &Builder{cfg: cfg, now: time.Now}
}

// BuildDefault produces the criteria a fresh search session starts with.
// Preference sources are tried in order: relative ranges against the
// viewer's own values, then stored absolute ranges, then the age
// heuristic. A source that cannot be evaluated (unparseable dob or
// height) falls through to the next one.
func (b *Builder) BuildDefault(profile model.ViewerProfile) model.SearchCriteria {
	criteria := model.SearchCriteria{
		Gender: rules.OppositeGender(profile.Gender),
	}

	pc := profile.PartnerCriteria
	if pc != nil {
		criteria.CastePreference = pc.CastePreference
		criteria.EatingPreference = pc.EatingPreference
	}

	b.applyAgeDefaults(&criteria, profile, pc)
	b.applyHeightDefaults(&criteria, profile, pc)

	return criteria
}

func (b *Builder) applyAgeDefaults(criteria *model.SearchCriteria, profile model.ViewerProfile, pc *model.PartnerCriteria) {
	age, ageKnown := rules.AgeFromDOB(profile.DOB, b.now())

	if pc != nil && pc.AgeRangeRelative != nil && ageKnown {
		criteria.AgeMin = rules.ClampAge(age+pc.AgeRangeRelative.MinOffset, b.cfg.AgeClampMin, b.cfg.AgeClampMax)
		criteria.AgeMax = rules.ClampAge(age+pc.AgeRangeRelative.MaxOffset, b.cfg.AgeClampMin, b.cfg.AgeClampMax)
		return
	}

	if pc != nil && pc.AgeRange != nil && pc.AgeRange.Min > 0 && pc.AgeRange.Max > 0 {
		criteria.AgeMin = rules.ClampAge(pc.AgeRange.Min, b.cfg.AgeClampMin, b.cfg.AgeClampMax)
		criteria.AgeMax = rules.ClampAge(pc.AgeRange.Max, b.cfg.AgeClampMin, b.cfg.AgeClampMax)
		return
	}

	if !ageKnown {
		return
	}

	younger, older := femaleYoungerOffset, femaleOlderOffset
	if rules.NormalizeGender(profile.Gender) == rules.GenderMale {
		younger, older = maleYoungerOffset, maleOlderOffset
	}
	criteria.AgeMin = rules.ClampAge(age+younger, b.cfg.AgeClampMin, b.cfg.AgeClampMax)
	criteria.AgeMax = rules.ClampAge(age+older, b.cfg.AgeClampMin, b.cfg.AgeClampMax)
}

func (b *Builder) applyHeightDefaults(criteria *model.SearchCriteria, profile model.ViewerProfile, pc *model.PartnerCriteria) {
	ownInches, heightKnown := rules.ParseHeight(profile.Height)

	if pc != nil && pc.HeightRangeRelative != nil && heightKnown {
		minBound := rules.HeightBoundFromInches(ownInches + pc.HeightRangeRelative.MinOffset)
		maxBound := rules.HeightBoundFromInches(ownInches + pc.HeightRangeRelative.MaxOffset)
		criteria.HeightMin = &minBound
		criteria.HeightMax = &maxBound
		return
	}

	if pc != nil && pc.HeightRange != nil {
		minBound := pc.HeightRange.Min
		maxBound := pc.HeightRange.Max
		if minBound.TotalInches() > 0 && maxBound.TotalInches() > 0 {
			criteria.HeightMin = &minBound
			criteria.HeightMax = &maxBound
			return
		}
	}

	if !heightKnown {
		return
	}

	shorter, taller := femaleShorterOffset, femaleTallerOffset
	if rules.NormalizeGender(profile.Gender) == rules.GenderMale {
		shorter, taller = maleShorterOffset, maleTallerOffset
	}
	minBound := rules.HeightBoundFromInches(ownInches + shorter)
	maxBound := rules.HeightBoundFromInches(ownInches + taller)
	criteria.HeightMin = &minBound
	criteria.HeightMax = &maxBound
}

// Normalize validates and canonicalizes user-edited criteria. It returns
// ErrValidation for inverted ranges; everything else is coerced rather
// than rejected.
func (b *Builder) Normalize(criteria model.SearchCriteria) (model.SearchCriteria, error) {
	criteria.Keyword = strings.TrimSpace(criteria.Keyword)
	criteria.ProfileID = strings.TrimSpace(criteria.ProfileID)
	criteria.Location = strings.TrimSpace(criteria.Location)

	if criteria.ProfileID != "" {
		// Direct lookup ignores every other filter.
		return model.SearchCriteria{ProfileID: criteria.ProfileID}, nil
	}

	if gender := strings.TrimSpace(criteria.Gender); gender != "" {
		normalized := rules.NormalizeGender(gender)
		if normalized == "" {
			return model.SearchCriteria{}, ErrValidation
		}
		criteria.Gender = normalized
	}

	if criteria.AgeMin < 0 || criteria.AgeMax < 0 || criteria.DaysBack < 0 {
		return model.SearchCriteria{}, ErrValidation
	}
	if criteria.AgeMin > 0 {
		criteria.AgeMin = rules.ClampAge(criteria.AgeMin, b.cfg.AgeClampMin, b.cfg.AgeClampMax)
	}
	if criteria.AgeMax > 0 {
		criteria.AgeMax = rules.ClampAge(criteria.AgeMax, b.cfg.AgeClampMin, b.cfg.AgeClampMax)
	}
	if criteria.AgeMin > 0 && criteria.AgeMax > 0 && criteria.AgeMin > criteria.AgeMax {
		return model.SearchCriteria{}, ErrValidation
	}

	if criteria.HeightMin != nil && criteria.HeightMax != nil &&
		criteria.HeightMin.TotalInches() > criteria.HeightMax.TotalInches() {
		return model.SearchCriteria{}, ErrValidation
	}

	return criteria, nil
}

// UpstreamQuery maps normalized criteria onto the upstream search
// endpoint's parameters.
func (b *Builder) UpstreamQuery(criteria model.SearchCriteria, page, pageSize int, requester string) upstream.SearchQuery {
	query := upstream.SearchQuery{
		Keyword:           criteria.Keyword,
		Gender:            criteria.Gender,
		AgeMin:            criteria.AgeMin,
		AgeMax:            criteria.AgeMax,
		Location:          criteria.Location,
		Education:         criteria.Education,
		CastePreference:   criteria.CastePreference,
		EatingPreference:  criteria.EatingPreference,
		WorkingStatus:     criteria.WorkingStatus,
		CitizenshipStatus: criteria.CitizenshipStatus,
		DaysBack:          criteria.DaysBack,
		ProfileID:         criteria.ProfileID,
		Page:              page,
		PageSize:          pageSize,
		Requester:         requester,
	}
	if criteria.HeightMin != nil {
		query.HeightMinInches = criteria.HeightMin.TotalInches()
	}
	if criteria.HeightMax != nil {
		query.HeightMaxInches = criteria.HeightMax.TotalInches()
	}
	return query
}
