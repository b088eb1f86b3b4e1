// Package ledger implements the monthly cost allocation of the mess: pivots of the
// record stores, monthly totals, the meal rate and the balance of every member.
//
// Reports are cached per month. Every write invalidates the reports of the months
// it touches after the write has been committed.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/cache"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Report names used in cache keys.
const (
	reportSummary    = "summary"
	reportBalances   = "balances"
	reportStatistics = "statistics"
	reportDashboard  = "dashboard"
)

func pivotReport(kind models.Kind) string {
	return "pivot:" + string(kind)
}

func recordsReport(kind models.Kind) string {
	return "records:" + string(kind)
}

func balanceReport(id uuid.UUID) string {
	return "balance:" + id.String()
}

// Service is the entry point for all reads and writes of the ledger.
type Service struct {
	store    Store
	cache    cache.Cache
	now      func() time.Time
	location *time.Location
	language language.Tag
	validate *validator.Validate

	// generation counts invalidations. mu orders cache writes of reads
	// against invalidations.
	mu         sync.Mutex
	generation uint64
}

type Option func(*Service)

// WithClock sets the clock "today" and the current month are derived from.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the time zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.location = loc
	}
}

// WithLanguage sets the language for display strings.
func WithLanguage(tag language.Tag) Option {
	return func(s *Service) {
		s.language = tag
	}
}

// NewService creates a Service on the store. A nil cache disables caching.
func NewService(store Store, c cache.Cache, opts ...Option) *Service {
	if c == nil {
		c = cache.Noop{}
	}

	s := &Service{
		store:    store,
		cache:    c,
		now:      time.Now,
		location: time.UTC,
		language: language.English,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.validate = newValidator(s.Today)
	return s
}

// Today returns the current calendar day in the configured time zone.
func (s *Service) Today() types.Date {
	return types.DateOf(s.now().In(s.location))
}

// Resolve resolves a month token. Invalid tokens resolve to the current month.
func (s *Service) Resolve(token string) (types.Month, types.DateRange) {
	return types.ResolveMonth(token, s.now().In(s.location))
}

// cached returns the report under key or builds and stores it on a miss.
//
// Cache failures are logged and never fail the read. A report built while a write
// was invalidated is returned, but not stored, since it may predate the write.
func cached[T any](ctx context.Context, s *Service, key string, build func() (T, error)) (T, error) {
	var value T

	ok, err := s.cache.Get(ctx, key, &value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		return value, nil
	}

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	value, err = build()
	if err != nil {
		return value, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation {
		log.Debug().Str("key", key).Msg("report changed while building, not cached")
		return value, nil
	}

	if err := s.cache.Set(ctx, key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}

	return value, nil
}

// invalidate removes the cached reports of all months. It is called after the write
// to the store has been committed.
func (s *Service) invalidate(ctx context.Context, months ...types.Month) error {
	if len(months) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++

	seen := make(map[string]struct{}, len(months))

	for _, month := range months {
		key := month.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if err := s.cache.Invalidate(ctx, month); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrCache, key, err)
		}
		log.Debug().Str("month", key).Msg("invalidated cached reports")
	}

	return nil
}

// flush removes all cached reports. Members are part of every report.
func (s *Service) flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++

	if err := s.cache.Flush(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrCache, err)
	}
	log.Debug().Msg("flushed cached reports")
	return nil
}

// monthRecords holds the records of all stores for a month.
type monthRecords struct {
	roster    []models.Member
	meals     []models.Entry
	deposits  []models.Entry
	shopping  []models.Entry
	utilities []models.Entry
}

func (s *Service) load(ctx context.Context, r types.DateRange) (monthRecords, error) {
	var m monthRecords
	var err error

	m.roster, err = s.store.ActiveMembers(ctx)
	if err != nil {
		return m, err
	}

	targets := map[models.Kind]*[]models.Entry{
		models.KindMeal:            &m.meals,
		models.KindDeposit:         &m.deposits,
		models.KindShoppingExpense: &m.shopping,
		models.KindUtility:         &m.utilities,
	}

	for _, kind := range models.Kinds {
		*targets[kind], err = s.store.Records(ctx, kind, r)
		if err != nil {
			return m, err
		}
	}

	return m, nil
}

// MonthlyPivot returns the pivot of the store for the month.
func (s *Service) MonthlyPivot(ctx context.Context, kind models.Kind, token string) (Pivot, error) {
	month, r := s.Resolve(token)

	return cached(ctx, s, cache.Key(pivotReport(kind), month), func() (Pivot, error) {
		roster, err := s.store.ActiveMembers(ctx)
		if err != nil {
			return Pivot{}, err
		}

		records, err := s.store.Records(ctx, kind, r)
		if err != nil {
			return Pivot{}, err
		}

		// Deposits are a display-only pivot
		p := BuildPivot(r, roster, records, kind == models.KindDeposit)
		p.Kind = kind
		p.Month = month
		return p, nil
	})
}

// MonthlySummary returns the totals and balances for the month.
func (s *Service) MonthlySummary(ctx context.Context, token string) (MonthlySummary, error) {
	month, r := s.Resolve(token)

	return cached(ctx, s, cache.Key(reportSummary, month), func() (MonthlySummary, error) {
		m, err := s.load(ctx, r)
		if err != nil {
			return MonthlySummary{}, err
		}

		summary := Summarize(month, m.roster, m.meals, m.deposits, m.shopping, m.utilities)
		if err := summary.Consistent(); err != nil {
			log.Error().Err(err).Str("month", month.String()).Msg("monthly summary")
		}

		return summary, nil
	})
}

// UserBalances returns the balances of all active members for the month, in roster order.
func (s *Service) UserBalances(ctx context.Context, token string) ([]UserSummary, error) {
	month, _ := s.Resolve(token)

	return cached(ctx, s, cache.Key(reportBalances, month), func() ([]UserSummary, error) {
		summary, err := s.MonthlySummary(ctx, month.String())
		if err != nil {
			return nil, err
		}
		return summary.Users, nil
	})
}

// MemberBalance returns the balance of a single member for the month.
//
// It works for inactive members, too. The meal rate is the mess-wide rate of the month.
func (s *Service) MemberBalance(ctx context.Context, id uuid.UUID, token string) (UserSummary, error) {
	month, r := s.Resolve(token)

	return cached(ctx, s, cache.Key(balanceReport(id), month), func() (UserSummary, error) {
		member, err := s.store.Member(ctx, id)
		if err != nil {
			return UserSummary{}, err
		}

		summary, err := s.MonthlySummary(ctx, month.String())
		if err != nil {
			return UserSummary{}, err
		}

		totals := make(map[models.Kind]decimal.Decimal, 3)
		for _, kind := range []models.Kind{models.KindMeal, models.KindDeposit, models.KindUtility} {
			records, err := s.store.MemberRecords(ctx, kind, id, r)
			if err != nil {
				return UserSummary{}, err
			}
			totals[kind] = Stats(records).Total
		}

		rate := MealRate(summary.TotalShoppingExpenses, summary.TotalMeals)
		return MemberBalance(member, totals[models.KindMeal], totals[models.KindDeposit], totals[models.KindUtility], rate), nil
	})
}

// Statistics returns the key figures of the month.
func (s *Service) Statistics(ctx context.Context, token string) (Statistics, error) {
	month, r := s.Resolve(token)

	return cached(ctx, s, cache.Key(reportStatistics, month), func() (Statistics, error) {
		m, err := s.load(ctx, r)
		if err != nil {
			return Statistics{}, err
		}

		return BuildStatistics(month, m.roster, m.meals, m.deposits, m.shopping), nil
	})
}

// Records returns all records of the store in the month with their statistics.
func (s *Service) Records(ctx context.Context, kind models.Kind, token string) (RecordList, error) {
	month, r := s.Resolve(token)

	return cached(ctx, s, cache.Key(recordsReport(kind), month), func() (RecordList, error) {
		entries, err := s.store.Records(ctx, kind, r)
		if err != nil {
			return RecordList{}, err
		}

		names, err := s.memberNames(ctx)
		if err != nil {
			return RecordList{}, err
		}

		records := make([]Record, 0, len(entries))
		for _, e := range entries {
			records = append(records, newRecord(kind, e, names[e.MemberID]))
		}

		return RecordList{
			Month:   month,
			Records: records,
			Stats:   Stats(entries),
		}, nil
	})
}

// memberNames returns the names of all members, including inactive ones.
func (s *Service) memberNames(ctx context.Context) (map[uuid.UUID]string, error) {
	members, err := s.store.Members(ctx, nil)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return names, nil
}

// Record returns a single record.
func (s *Service) Record(ctx context.Context, kind models.Kind, id uuid.UUID) (Record, error) {
	e, err := s.store.Record(ctx, kind, id)
	if err != nil {
		return Record{}, err
	}

	member, err := s.store.Member(ctx, e.MemberID)
	if err != nil {
		return Record{}, err
	}

	return newRecord(kind, e, member.Name), nil
}

// checkMember verifies that the member of a write exists, and is active if required.
func (s *Service) checkMember(ctx context.Context, id uuid.UUID, requireActive bool) (models.Member, error) {
	member, err := s.store.Member(ctx, id)
	if errors.Is(err, models.ErrResourceNotFound) {
		return member, fieldError("memberId", "member does not exist")
	} else if err != nil {
		return member, err
	}

	if requireActive && !member.Active {
		return member, fieldError("memberId", "member is not active")
	}

	return member, nil
}

// entry converts a validated input to a store entry.
func entry(kind models.Kind, in RecordInput) models.Entry {
	e := models.Entry{
		MemberID: in.MemberID,
		Date:     in.Date.Time(),
		Quantity: in.Quantity,
	}

	if kind.HasDescription() {
		e.Description = in.Description
	}

	return e
}

// Save creates the record of the member for the date or replaces the existing one.
func (s *Service) Save(ctx context.Context, kind models.Kind, in RecordInput) (Record, error) {
	if err := validateRecord(s.validate, kind, in); err != nil {
		return Record{}, err
	}

	member, err := s.checkMember(ctx, in.MemberID, false)
	if err != nil {
		return Record{}, err
	}

	e, err := s.store.Upsert(ctx, kind, entry(kind, in))
	if err != nil {
		return Record{}, err
	}

	if err := s.invalidate(ctx, types.MonthOf(e.Date)); err != nil {
		return Record{}, err
	}

	return newRecord(kind, e, member.Name), nil
}

// Update changes the fields of an existing record. Only the named fields are taken from in.
func (s *Service) Update(ctx context.Context, kind models.Kind, id uuid.UUID, in RecordInput, fields []string) (Record, error) {
	existing, err := s.store.Record(ctx, kind, id)
	if err != nil {
		return Record{}, err
	}

	merged := RecordInput{
		MemberID:    existing.MemberID,
		Date:        types.DateOf(existing.Date),
		Quantity:    existing.Quantity,
		Description: existing.Description,
	}

	for _, field := range fields {
		switch field {
		case "memberId":
			merged.MemberID = in.MemberID
		case "date":
			merged.Date = in.Date
		case "quantity":
			merged.Quantity = in.Quantity
		case "description":
			merged.Description = in.Description
		}
	}

	if err := validateRecord(s.validate, kind, merged); err != nil {
		return Record{}, err
	}

	member, err := s.checkMember(ctx, merged.MemberID, false)
	if err != nil {
		return Record{}, err
	}

	update := entry(kind, merged)
	update.ID = id

	e, err := s.store.Update(ctx, kind, update)
	if err != nil {
		return Record{}, err
	}

	// A record moved to another month changes the reports of both months
	if err := s.invalidate(ctx, types.MonthOf(existing.Date), types.MonthOf(e.Date)); err != nil {
		return Record{}, err
	}

	return newRecord(kind, e, member.Name), nil
}

// Delete deletes a record.
func (s *Service) Delete(ctx context.Context, kind models.Kind, id uuid.UUID) error {
	existing, err := s.store.Record(ctx, kind, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, kind, id); err != nil {
		return err
	}

	return s.invalidate(ctx, types.MonthOf(existing.Date))
}
