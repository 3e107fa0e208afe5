package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/expiry"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"gorm.io/gorm"
)

// DefaultRenewalWindowDays is how far ahead UpcomingRenewals looks by default.
const DefaultRenewalWindowDays = 90

type documentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	clock     Clock
}

func NewDocumentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, clock Clock) DocumentService {
	if clock == nil {
		clock = SystemClock
	}
	return &documentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		clock:     clock,
	}
}

// DocumentStatusAt derives the status of a document at now. Only "renewed"
// is taken from storage.
func DocumentStatusAt(doc *models.ComplianceDocument, now time.Time) (models.DocumentStatus, expiry.Result) {
	result := expiry.Derive(&doc.ExpiresAt, string(doc.Status), now)
	switch {
	case doc.Status == models.DocumentRenewed:
		return models.DocumentRenewed, result
	case result.IsExpired:
		return models.DocumentExpired, result
	case result.DaysRemaining != nil && *result.DaysRemaining <= expiry.WarningDays:
		return models.DocumentExpiringSoon, result
	default:
		return models.DocumentActive, result
	}
}

func newDocumentResponse(doc *models.ComplianceDocument, now time.Time) *DocumentResponse {
	status, derived := DocumentStatusAt(doc, now)
	return &DocumentResponse{
		ComplianceDocument: doc,
		DerivedStatus:      status,
		DaysRemaining:      derived.DaysRemaining,
		IsExpired:          derived.IsExpired,
		Urgency:            derived.Urgency,
	}
}

func (s *documentService) now() time.Time {
	return s.clock().UTC()
}

func (s *documentService) getOwned(ctx context.Context, tx *gorm.DB, id uint, actor Actor, action string) (*models.ComplianceDocument, error) {
	doc, err := s.repo.Document().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, persistenceError("get document", err)
	}
	if doc.OrgID != actor.OrgID {
		return nil, NewPermissionError(actor.UserID, id, "document", action, "document belongs to another organization")
	}
	return doc, nil
}

func (s *documentService) Create(ctx context.Context, req *DocumentCreateRequest, actor Actor) (*DocumentResponse, error) {
	s.logger.Info("Creating compliance document",
		"org_id", req.OrgID,
		"document_type", req.DocumentType,
		"created_by", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	issuedAt := req.IssuedAt.UTC()
	doc := &models.ComplianceDocument{
		OrgID:        req.OrgID,
		DocumentType: req.DocumentType,
		Title:        req.Title,
		Description:  req.Description,
		FileURL:      req.FileURL,
		IssuedAt:     issuedAt,
		ExpiresAt:    models.DocumentExpiry(req.DocumentType, issuedAt),
		Status:       models.DocumentActive,
		CreatedBy:    actor.UserID,
	}
	if err := s.repo.Document().Create(ctx, nil, doc); err != nil {
		return nil, persistenceError("create document", err)
	}

	return newDocumentResponse(doc, s.now()), nil
}

func (s *documentService) GetByID(ctx context.Context, id uint, actor Actor) (*DocumentResponse, error) {
	doc, err := s.getOwned(ctx, nil, id, actor, "view")
	if err != nil {
		return nil, err
	}
	return newDocumentResponse(doc, s.now()), nil
}

// List filters by derived status in memory since only "renewed" is stored.
func (s *documentService) List(ctx context.Context, filters repositories.DocumentFilters, actor Actor) ([]*DocumentResponse, int64, error) {
	filters.OrgID = &actor.OrgID
	now := s.now()

	wanted := filters.Status
	if wanted == nil || *wanted == models.DocumentRenewed {
		docs, total, err := s.repo.Document().List(ctx, nil, filters)
		if err != nil {
			return nil, 0, persistenceError("list documents", err)
		}
		out := make([]*DocumentResponse, 0, len(docs))
		for _, d := range docs {
			out = append(out, newDocumentResponse(d, now))
		}
		return out, total, nil
	}

	stored := models.DocumentActive
	unpaged := filters
	unpaged.Status = &stored
	unpaged.Limit, unpaged.Offset = 0, 0
	docs, _, err := s.repo.Document().List(ctx, nil, unpaged)
	if err != nil {
		return nil, 0, persistenceError("list documents", err)
	}

	var matched []*DocumentResponse
	for _, d := range docs {
		if r := newDocumentResponse(d, now); r.DerivedStatus == *wanted {
			matched = append(matched, r)
		}
	}

	total := int64(len(matched))
	start := min(filters.Offset, len(matched))
	end := len(matched)
	if filters.Limit > 0 {
		end = min(start+filters.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

func (s *documentService) Update(ctx context.Context, id uint, req *DocumentUpdateRequest, actor Actor) (*DocumentResponse, error) {
	s.logger.Info("Updating compliance document", "document_id", id, "user_id", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	var doc *models.ComplianceDocument
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		doc, err = s.getOwned(ctx, tx, id, actor, "update")
		if err != nil {
			return err
		}

		rederive := false
		if req.DocumentType != nil && *req.DocumentType != doc.DocumentType {
			doc.DocumentType = *req.DocumentType
			rederive = true
		}
		if req.IssuedAt != nil {
			doc.IssuedAt = req.IssuedAt.UTC()
			rederive = true
		}
		if req.Title != nil {
			doc.Title = *req.Title
		}
		if req.Description != nil {
			doc.Description = req.Description
		}
		if req.FileURL != nil {
			doc.FileURL = req.FileURL
		}
		if rederive {
			doc.ExpiresAt = models.DocumentExpiry(doc.DocumentType, doc.IssuedAt)
		}

		if err := s.repo.Document().Update(ctx, tx, doc); err != nil {
			return persistenceError("update document", err)
		}
		return nil
	})
	if err != nil {
		return nil, txError("update document", err)
	}

	return newDocumentResponse(doc, s.now()), nil
}

func (s *documentService) Delete(ctx context.Context, id uint, actor Actor) error {
	s.logger.Info("Deleting compliance document", "document_id", id, "user_id", actor.UserID)

	if _, err := s.getOwned(ctx, nil, id, actor, "delete"); err != nil {
		return err
	}
	if err := s.repo.Document().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDocumentNotFound
		}
		return persistenceError("delete document", err)
	}
	return nil
}

// Renew creates the successor document and marks the original renewed in one transaction.
func (s *documentService) Renew(ctx context.Context, id uint, req *DocumentRenewRequest, actor Actor) (*RenewResponse, error) {
	s.logger.Info("Renewing compliance document", "document_id", id, "user_id", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	var original, renewed *models.ComplianceDocument
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		original, err = s.getOwned(ctx, tx, id, actor, "renew")
		if err != nil {
			return err
		}
		if original.Status == models.DocumentRenewed {
			return fmt.Errorf("%w: document %d was already renewed", ErrInvalidTransition, id)
		}

		issuedAt := req.IssuedAt.UTC()
		originalID := original.ID
		renewed = &models.ComplianceDocument{
			OrgID:         original.OrgID,
			DocumentType:  original.DocumentType,
			Title:         original.Title,
			Description:   original.Description,
			FileURL:       req.FileURL,
			IssuedAt:      issuedAt,
			ExpiresAt:     models.DocumentExpiry(original.DocumentType, issuedAt),
			Status:        models.DocumentActive,
			RenewedFromID: &originalID,
			CreatedBy:     actor.UserID,
		}
		if req.Title != nil {
			renewed.Title = *req.Title
		}

		if err := s.repo.Document().Create(ctx, tx, renewed); err != nil {
			return persistenceError("create renewed document", err)
		}

		applied, err := s.repo.Document().MarkRenewed(ctx, tx, id)
		if err != nil {
			return persistenceError("mark document renewed", err)
		}
		if !applied {
			return fmt.Errorf("%w: document %d was renewed concurrently", ErrInvalidTransition, id)
		}
		original.Status = models.DocumentRenewed
		return nil
	})
	if err != nil {
		return nil, txError("renew document", err)
	}

	now := s.now()
	s.publishDocument(ctx, events.DocumentRenewed, renewed, now, 0)

	s.logger.Info("Compliance document renewed",
		"document_id", id,
		"renewed_document_id", renewed.ID,
		"expires_at", renewed.ExpiresAt)

	return &RenewResponse{
		Original: newDocumentResponse(original, now),
		Renewed:  newDocumentResponse(renewed, now),
	}, nil
}

func (s *documentService) UpcomingRenewals(ctx context.Context, withinDays int, actor Actor) ([]*DocumentResponse, error) {
	if withinDays <= 0 {
		withinDays = DefaultRenewalWindowDays
	}

	now := s.now()
	docs, err := s.repo.Document().ListExpiringBefore(ctx, nil, &actor.OrgID, now.AddDate(0, 0, withinDays+1))
	if err != nil {
		return nil, persistenceError("list upcoming renewals", err)
	}

	out := make([]*DocumentResponse, 0, len(docs))
	for _, d := range docs {
		r := newDocumentResponse(d, now)
		if r.DaysRemaining != nil && *r.DaysRemaining > withinDays {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *documentService) publishDocument(ctx context.Context, eventType events.EventType, doc *models.ComplianceDocument, now time.Time, threshold int) {
	if s.publisher == nil {
		return
	}
	data := documentEventData(doc, now, threshold)
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, now, data)); err != nil {
		s.logger.Error("Failed to publish event", "type", eventType, "error", err)
	}
}

func documentEventData(doc *models.ComplianceDocument, now time.Time, threshold int) events.DocumentEventData {
	return events.DocumentEventData{
		DocumentID:    doc.ID,
		OrgID:         doc.OrgID,
		DocumentType:  string(doc.DocumentType),
		Title:         doc.Title,
		ExpiresAt:     doc.ExpiresAt,
		DaysRemaining: expiry.DaysRemaining(doc.ExpiresAt, now),
		Threshold:     threshold,
		RenewedFromID: doc.RenewedFromID,
	}
}
