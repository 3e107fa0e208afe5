package services

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:embed catalog/modules.yaml
var builtinCatalog []byte

type catalogFile struct {
	Modules []ModuleUpsertRequest `yaml:"modules"`
}

// LoadCatalog parses a catalog document and validates every module in it.
func LoadCatalog(data []byte, v *validator.Validator) ([]ModuleUpsertRequest, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Modules))
	for i := range file.Modules {
		m := &file.Modules[i]
		if seen[m.ID] {
			return nil, validationError(fmt.Errorf("duplicate module id %q in catalog", m.ID))
		}
		seen[m.ID] = true
		if errs := v.GetBusinessValidator().ValidateModuleDefinition(m); errs.HasErrors() {
			return nil, validationError(fmt.Errorf("module %s: %w", m.ID, errs))
		}
	}
	return file.Modules, nil
}

type catalogService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	catalog   []byte
}

func NewCatalogService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) CatalogService {
	return &catalogService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		catalog:   builtinCatalog,
	}
}

func newModuleResponse(module *models.TrainingModule) *ModuleResponse {
	return &ModuleResponse{
		TrainingModule:       module,
		TotalLessons:         module.TotalLessons(),
		TotalDurationMinutes: module.TotalDurationMinutes(),
	}
}

func (s *catalogService) GetModule(ctx context.Context, id string) (*ModuleResponse, error) {
	module, err := s.repo.Module().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, persistenceError("get module", err)
	}
	return newModuleResponse(module), nil
}

func (s *catalogService) ListModules(ctx context.Context, filters repositories.ModuleFilters) ([]*ModuleResponse, int64, error) {
	modules, total, err := s.repo.Module().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, persistenceError("list modules", err)
	}

	responses := make([]*ModuleResponse, 0, len(modules))
	for _, m := range modules {
		responses = append(responses, newModuleResponse(m))
	}
	return responses, total, nil
}

func (s *catalogService) UpsertModule(ctx context.Context, req *ModuleUpsertRequest) (*ModuleResponse, error) {
	s.logger.Info("Upserting training module", "module_id", req.ID, "lessons", len(req.Lessons))

	if errs := s.validator.GetBusinessValidator().ValidateModuleDefinition(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	module := moduleFromRequest(req)
	if err := s.repo.Module().Upsert(ctx, nil, module); err != nil {
		return nil, persistenceError("upsert module", err)
	}

	return s.GetModule(ctx, module.ID)
}

func (s *catalogService) SeedCatalog(ctx context.Context) (int, error) {
	modules, err := LoadCatalog(s.catalog, s.validator)
	if err != nil {
		return 0, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range modules {
			if err := s.repo.Module().Upsert(ctx, tx, moduleFromRequest(&modules[i])); err != nil {
				return fmt.Errorf("module %s: %w", modules[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, persistenceError("seed catalog", err)
	}

	s.logger.Info("Training catalog seeded", "modules", len(modules))
	return len(modules), nil
}

func moduleFromRequest(req *ModuleUpsertRequest) *models.TrainingModule {
	module := &models.TrainingModule{
		ID:                     req.ID,
		Title:                  req.Title,
		Description:            req.Description,
		Tier:                   req.Tier,
		Audience:               datatypes.JSONSlice[string](req.Audience),
		ValidityMonths:         req.ValidityMonths,
		RequiresAcknowledgment: req.RequiresAcknowledgment,
		TriggerType:            req.TriggerType,
		TriggerValues:          datatypes.JSONSlice[string](req.TriggerValues),
		MinEmployees:           req.MinEmployees,
		IsActive:               true,
	}
	if module.ValidityMonths == 0 {
		module.ValidityMonths = models.DefaultValidityMonths
	}
	if module.TriggerType == "" {
		module.TriggerType = models.TriggerCore
	}
	if req.IsActive != nil {
		module.IsActive = *req.IsActive
	}

	module.Lessons = make([]models.Lesson, 0, len(req.Lessons))
	for i, l := range req.Lessons {
		module.Lessons = append(module.Lessons, models.Lesson{
			ModuleID:        req.ID,
			Position:        i,
			Title:           l.Title,
			DurationMinutes: l.DurationMinutes,
		})
	}
	return module
}
