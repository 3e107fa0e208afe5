package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

var (
	stateNames = map[string]string{
		"IL": "Illinois",
		"NY": "New York",
		"CO": "Colorado",
		"CA": "California",
		"MD": "Maryland",
		"TX": "Texas",
	}
	toolNames = map[string]string{
		"hirevue":            "HireVue",
		"greenhouse":         "Greenhouse",
		"linkedin-recruiter": "LinkedIn Recruiter",
		"workday":            "Workday",
		"_generic":           "your ATS",
	}
	industryNames = map[string]string{
		"healthcare": "Healthcare",
		"finance":    "Financial Services",
		"staffing":   "Staffing/Recruiting",
	}
)

// maxBulkPairs matches the pair limit accepted by a single bulk assignment.
const maxBulkPairs = 500

func displayName(names map[string]string, key string) string {
	if n, ok := names[key]; ok {
		return n
	}
	return key
}

type recommendationService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	validator  *validator.Validator
	enrollment EnrollmentService
	clock      Clock
}

func NewRecommendationService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, enrollment EnrollmentService, clock Clock) RecommendationService {
	if clock == nil {
		clock = SystemClock
	}
	return &recommendationService{
		repo:       repo,
		logger:     logger,
		validator:  validator,
		enrollment: enrollment,
		clock:      clock,
	}
}

// MatchTrigger reports whether a module's trigger fires for the profile and why.
func MatchTrigger(module *models.TrainingModule, profile OrgProfile) (bool, string) {
	switch module.TriggerType {
	case models.TriggerCore, "":
		return true, "Required for all teams"
	case models.TriggerState:
		for _, v := range module.TriggerValues {
			for _, s := range profile.States {
				if strings.EqualFold(v, s) {
					return true, fmt.Sprintf("Your team hires in %s", displayName(stateNames, strings.ToUpper(v)))
				}
			}
		}
	case models.TriggerTool:
		for _, v := range module.TriggerValues {
			for _, t := range profile.Tools {
				if v == t {
					return true, fmt.Sprintf("You use %s", displayName(toolNames, v))
				}
			}
		}
	case models.TriggerIndustry:
		for _, v := range module.TriggerValues {
			if profile.Industry != "" && v == profile.Industry {
				return true, fmt.Sprintf("Your industry: %s", displayName(industryNames, v))
			}
		}
	case models.TriggerSize:
		if module.MinEmployees > 0 && profile.EmployeeCount >= module.MinEmployees {
			return true, fmt.Sprintf("Your team size: %d+ employees", module.MinEmployees)
		}
	}
	return false, ""
}

func (s *recommendationService) Recommend(ctx context.Context, req *RecommendRequest) ([]*Recommendation, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	modules, err := s.repo.Module().ListActive(ctx, nil)
	if err != nil {
		return nil, persistenceError("list modules", err)
	}

	held := map[string]bool{}
	if req.UserID != "" {
		held, err = s.heldModules(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
	}

	recommendations := make([]*Recommendation, 0)
	for _, module := range modules {
		if held[module.ID] {
			continue
		}
		if req.Role != "" && !req.Role.ReachesAudience(module.Audience) {
			continue
		}
		ok, reason := MatchTrigger(module, req.Profile)
		if !ok {
			continue
		}
		recommendations = append(recommendations, &Recommendation{
			Module:  newModuleResponse(module),
			Trigger: module.TriggerType,
			Reason:  reason,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		a, b := recommendations[i].Module, recommendations[j].Module
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		return a.Title < b.Title
	})

	s.logger.Debug("Recommendations computed",
		"org_id", req.OrgID,
		"user_id", req.UserID,
		"count", len(recommendations))

	return recommendations, nil
}

// heldModules returns the modules for which the user's latest cycle is still valid.
func (s *recommendationService) heldModules(ctx context.Context, userID string) (map[string]bool, error) {
	enrollments, _, err := s.repo.Enrollment().List(ctx, nil, repositories.EnrollmentFilters{
		UserID:     &userID,
		LatestOnly: true,
	})
	if err != nil {
		return nil, persistenceError("list enrollments", err)
	}

	now := s.clock().UTC()
	held := make(map[string]bool, len(enrollments))
	for _, e := range enrollments {
		if !e.IsExpiredAt(now) {
			held[e.ModuleID] = true
		}
	}
	return held, nil
}

// AssignRecommended enrolls every member in the modules recommended for their role.
func (s *recommendationService) AssignRecommended(ctx context.Context, req *AssignRecommendedRequest, actor Actor) (*BulkAssignResult, error) {
	s.logger.Info("Assigning recommended modules",
		"org_id", req.OrgID,
		"members", len(req.Members),
		"assigned_by", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	var pairs []AssignmentPair
	for _, member := range req.Members {
		recs, err := s.Recommend(ctx, &RecommendRequest{
			OrgID:   req.OrgID,
			Role:    member.Role,
			Profile: req.Profile,
		})
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			pairs = append(pairs, AssignmentPair{UserID: member.UserID, ModuleID: r.Module.ID})
		}
	}

	result := &BulkAssignResult{Created: []*EnrollmentResponse{}, Skipped: []SkippedAssignment{}}
	for start := 0; start < len(pairs); start += maxBulkPairs {
		end := min(start+maxBulkPairs, len(pairs))
		batch, err := s.enrollment.BulkAssign(ctx, &BulkAssignRequest{
			OrgID: req.OrgID,
			Pairs: pairs[start:end],
			DueAt: req.DueAt,
		}, actor)
		if batch != nil {
			result.Created = append(result.Created, batch.Created...)
			result.Skipped = append(result.Skipped, batch.Skipped...)
		}
		if err != nil {
			return result, err
		}
	}
	return result, nil
}
