package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkjeong/leadnet/internal/apperr"
	"github.com/mkjeong/leadnet/internal/metrics"
	"github.com/mkjeong/leadnet/internal/model"
	"github.com/mkjeong/leadnet/internal/repository"
	"github.com/mkjeong/leadnet/internal/util"
)

// defaultMemo is the sentinel written into blank memos at creation.
const defaultMemo = "1."

// Resolver maps an actor to its authorization scope.
type Resolver interface {
	ResolveOwnUsername(ctx context.Context, actorID string) (string, error)
	ResolveDescendants(ctx context.Context, actorID string, includeSelf bool) ([]string, error)
}

// Service is the scoped query engine plus record lifecycle: every listing is
// restricted to a username scope derived from the caller's position in the
// referral network, and every page carries the total for its own predicate.
type Service struct {
	records   repository.RecordsRepository
	hierarchy Resolver
}

func New(records repository.RecordsRepository, resolver Resolver) *Service {
	return &Service{records: records, hierarchy: resolver}
}

// Create normalizes the phone number, fills defaults, and inserts unless a
// record with the same normalized phone already exists. Duplicates return
// (nil, nil), not an error, so repeated bulk-import calls stay idempotent.
// The duplicate pre-check and the insert are separate statements; the unique
// key on phonenumber is the backstop for the narrow race between them.
func (s *Service) Create(ctx context.Context, actorID string, in model.RecordInput) (*model.Record, error) {
	own, err := s.hierarchy.ResolveOwnUsername(ctx, actorID)
	if err != nil {
		return nil, err
	}

	phone := util.NormalizePhone(in.PhoneNumber)
	if phone == "" {
		return nil, apperr.Validationf("phone number %q has no digits", in.PhoneNumber)
	}
	typ, ok := model.ParseRecordType(in.Type)
	if !ok {
		return nil, apperr.Validationf("unknown record type %q", in.Type)
	}

	manager := strings.TrimSpace(in.Manager)
	if manager == "" {
		manager = own
	}
	memo := strings.TrimSpace(in.Memo)
	if memo == "" {
		memo = defaultMemo
	}

	existing, err := s.records.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.RecordsTotal.WithLabelValues("duplicate").Inc()
		return nil, nil
	}

	rec := model.Record{
		ID:          util.NewID(),
		Name:        strings.TrimSpace(in.Name),
		PhoneNumber: phone,
		Sex:         strings.TrimSpace(in.Sex),
		IncomePath:  strings.TrimSpace(in.IncomePath),
		CreatorName: strings.TrimSpace(in.CreatorName),
		Memo:        memo,
		Type:        typ,
		Manager:     manager,
		IncomeDate:  strings.TrimSpace(in.IncomeDate),
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	metrics.RecordsTotal.WithLabelValues("created").Inc()
	return &rec, nil
}

// Update applies the patch fields to the stored record. Unset fields and
// fields that trim to blank are left untouched.
func (s *Service) Update(ctx context.Context, id string, patch model.RecordPatch) (*model.Record, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.NotFoundf("record %s", id)
	}

	apply := func(dst *string, src *string) {
		if src == nil {
			return
		}
		if v := strings.TrimSpace(*src); v != "" {
			*dst = v
		}
	}
	apply(&rec.Name, patch.Name)
	apply(&rec.Sex, patch.Sex)
	apply(&rec.IncomePath, patch.IncomePath)
	apply(&rec.CreatorName, patch.CreatorName)
	apply(&rec.Memo, patch.Memo)
	apply(&rec.Manager, patch.Manager)
	apply(&rec.IncomeDate, patch.IncomeDate)

	if patch.PhoneNumber != nil && strings.TrimSpace(*patch.PhoneNumber) != "" {
		phone := util.NormalizePhone(*patch.PhoneNumber)
		if phone == "" {
			return nil, apperr.Validationf("phone number %q has no digits", *patch.PhoneNumber)
		}
		rec.PhoneNumber = phone
	}
	if patch.Type != nil && strings.TrimSpace(*patch.Type) != "" {
		typ, ok := model.ParseRecordType(*patch.Type)
		if !ok {
			return nil, apperr.Validationf("unknown record type %q", *patch.Type)
		}
		rec.Type = typ
	}

	if err := s.records.Save(ctx, *rec); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	metrics.RecordsTotal.WithLabelValues("updated").Inc()
	return rec, nil
}

// Delete removes by id; true iff exactly one record was removed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.records.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		metrics.RecordsTotal.WithLabelValues("deleted").Inc()
	}
	return ok, nil
}

// FindByPhone normalizes its argument before the unique-key lookup, so
// differently punctuated equivalents find the same record.
func (s *Service) FindByPhone(ctx context.Context, raw string) (*model.Record, error) {
	phone := util.NormalizePhone(raw)
	if phone == "" {
		return nil, apperr.Validationf("phone number %q has no digits", raw)
	}
	return s.records.GetByPhone(ctx, phone)
}

// page runs List and Count over the same predicate. An empty scope is a
// valid empty page, never an error and never a store round-trip.
func (s *Service) page(ctx context.Context, f repository.RecordFilter, limit, offset int) (model.Page, error) {
	if f.Scoped && len(f.Managers) == 0 {
		return model.Page{Records: []model.Record{}, Total: 0}, nil
	}
	recs, err := s.records.List(ctx, f, limit, offset)
	if err != nil {
		return model.Page{}, err
	}
	total, err := s.records.Count(ctx, f)
	if err != nil {
		return model.Page{}, err
	}
	return model.Page{Records: recs, Total: total}, nil
}

// ListAll is the unscoped administrative listing, newest first.
func (s *Service) ListAll(ctx context.Context, limit, offset int) (model.Page, error) {
	return s.page(ctx, repository.RecordFilter{}, limit, offset)
}

// ListForMainUser scopes to the actor's own username plus the blank-manager
// bucket: unassigned records stay visible in the primary view.
func (s *Service) ListForMainUser(ctx context.Context, actorID string, limit, offset int, includeSelf bool, typ model.RecordType) (model.Page, error) {
	own, err := s.hierarchy.ResolveOwnUsername(ctx, actorID)
	if err != nil {
		return model.Page{}, err
	}
	scope := []string{}
	if includeSelf {
		scope = append(scope, own)
	}
	scope = append(scope, "")
	return s.page(ctx, repository.RecordFilter{Scoped: true, Managers: scope, Type: typ}, limit, offset)
}

// ListByOwnUsername scopes to exactly the actor's username, no downline.
func (s *Service) ListByOwnUsername(ctx context.Context, actorID string, limit, offset int, includeSelf bool, typ model.RecordType) (model.Page, error) {
	own, err := s.hierarchy.ResolveOwnUsername(ctx, actorID)
	if err != nil {
		return model.Page{}, err
	}
	scope := []string{}
	if includeSelf {
		scope = append(scope, own)
	}
	return s.page(ctx, repository.RecordFilter{Scoped: true, Managers: scope, Type: typ}, limit, offset)
}

// ListUnderNetwork scopes to the actor's transitive downline.
func (s *Service) ListUnderNetwork(ctx context.Context, actorID string, limit, offset int, includeSelf bool, typ model.RecordType) (model.Page, error) {
	scope, err := s.hierarchy.ResolveDescendants(ctx, actorID, includeSelf)
	if err != nil {
		return model.Page{}, err
	}
	return s.page(ctx, repository.RecordFilter{Scoped: true, Managers: scope, Type: typ}, limit, offset)
}

// SearchUnderNetwork filters the full downline (self included) by optional
// type equality and an OR over the provided per-field substring terms. With
// no terms the OR clause is omitted entirely, it never means "match nothing".
func (s *Service) SearchUnderNetwork(ctx context.Context, actorID string, limit, offset int, filters repository.SearchFilters, typ model.RecordType) (model.Page, error) {
	scope, err := s.hierarchy.ResolveDescendants(ctx, actorID, true)
	if err != nil {
		return model.Page{}, err
	}
	f := repository.RecordFilter{Scoped: true, Managers: scope, Type: typ}
	if !filters.Empty() {
		f.Search = &filters
	}
	return s.page(ctx, f, limit, offset)
}
