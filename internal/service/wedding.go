package service

import (
	"context"
	"errors"

	"github.com/vowsuite/vowsuite/internal/domain"
	"github.com/vowsuite/vowsuite/internal/store"
)

var ErrWeddingNotFound = errors.New("wedding not found")

const docTypeWedding = "wedding"

// WeddingService manages wedding records inside an organization's data
// store. Ordinary single-store document operations; the store handle is
// resolved per call so records follow the organization across a rename.
type WeddingService struct {
	locator domain.StoreLocator
}

func NewWeddingService(locator domain.StoreLocator) *WeddingService {
	return &WeddingService{locator: locator}
}

func (s *WeddingService) Create(ctx context.Context, org string, w *domain.Wedding) (*domain.Wedding, error) {
	data := map[string]any{
		"type":         docTypeWedding,
		"organization": org,
		"bride_name":   w.BrideName,
		"groom_name":   w.GroomName,
		"wedding_date": w.WeddingDate,
		"venue":        w.Venue,
	}
	if w.Budget != nil {
		data["budget"] = *w.Budget
	}

	id, err := s.locator.Resolve(org).Insert(ctx, data)
	if err != nil {
		return nil, err
	}
	w.ID = id
	w.Organization = org
	return w, nil
}

func (s *WeddingService) Get(ctx context.Context, org, id string) (*domain.Wedding, error) {
	doc, err := s.locator.Resolve(org).Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrWeddingNotFound
		}
		return nil, err
	}
	if doc.Data["type"] != docTypeWedding {
		return nil, ErrWeddingNotFound
	}
	return weddingFromDoc(*doc), nil
}

func (s *WeddingService) Update(ctx context.Context, org, id string, upd domain.WeddingUpdate) (*domain.Wedding, error) {
	fields := map[string]any{}
	if upd.BrideName != nil {
		fields["bride_name"] = *upd.BrideName
	}
	if upd.GroomName != nil {
		fields["groom_name"] = *upd.GroomName
	}
	if upd.WeddingDate != nil {
		fields["wedding_date"] = *upd.WeddingDate
	}
	if upd.Venue != nil {
		fields["venue"] = *upd.Venue
	}
	if upd.Budget != nil {
		fields["budget"] = *upd.Budget
	}

	if len(fields) > 0 {
		if err := s.locator.Resolve(org).Update(ctx, id, fields); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrWeddingNotFound
			}
			return nil, err
		}
	}
	return s.Get(ctx, org, id)
}

func (s *WeddingService) Delete(ctx context.Context, org, id string) error {
	if err := s.locator.Resolve(org).Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrWeddingNotFound
		}
		return err
	}
	return nil
}

func (s *WeddingService) List(ctx context.Context, org string) ([]domain.Wedding, error) {
	docs, err := s.locator.Resolve(org).ListByType(ctx, docTypeWedding)
	if err != nil {
		return nil, err
	}
	weddings := make([]domain.Wedding, 0, len(docs))
	for _, doc := range docs {
		weddings = append(weddings, *weddingFromDoc(doc))
	}
	return weddings, nil
}

func weddingFromDoc(doc domain.Document) *domain.Wedding {
	w := &domain.Wedding{ID: doc.ID}
	if v, ok := doc.Data["bride_name"].(string); ok {
		w.BrideName = v
	}
	if v, ok := doc.Data["groom_name"].(string); ok {
		w.GroomName = v
	}
	if v, ok := doc.Data["wedding_date"].(string); ok {
		w.WeddingDate = v
	}
	if v, ok := doc.Data["venue"].(string); ok {
		w.Venue = v
	}
	if v, ok := doc.Data["organization"].(string); ok {
		w.Organization = v
	}
	if v, ok := doc.Data["budget"].(float64); ok {
		w.Budget = &v
	}
	return w
}
