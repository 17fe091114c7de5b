package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/curious-broccoli/ufo-hackathon/models"
	"github.com/curious-broccoli/ufo-hackathon/repositories"
	"github.com/curious-broccoli/ufo-hackathon/scoring"
)

const maxGroupNameLength = 50

// SubmitInput carries one prediction submission: the group it belongs to and
// the predicted probability vectors keyed by evaluation-file identifier.
type SubmitInput struct {
	GroupName   string
	Predictions map[string][]float64
}

// SubmitResult is a successfully scored and persisted submission together
// with its (possibly just created) group.
type SubmitResult struct {
	Group      *models.Group
	Submission *models.Submission
}

type SubmissionService interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	// DeleteGroup removes a group that has no submissions, matching the name
	// case-insensitively.
	DeleteGroup(ctx context.Context, name string) error
}

type submissionService struct {
	groupRepo      repositories.GroupRepository
	submissionRepo repositories.SubmissionRepository
	engine         *scoring.Engine
	maxPerGroup    int
}

func NewSubmissionService(
	groupRepo repositories.GroupRepository,
	submissionRepo repositories.SubmissionRepository,
	engine *scoring.Engine,
	maxPerGroup int,
) SubmissionService {
	return &submissionService{
		groupRepo:      groupRepo,
		submissionRepo: submissionRepo,
		engine:         engine,
		maxPerGroup:    maxPerGroup,
	}
}

func (s *submissionService) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if input.GroupName == "" {
		return nil, ErrGroupNameRequired
	}
	if len(input.GroupName) > maxGroupNameLength {
		return nil, ErrGroupNameTooLong
	}

	group, err := s.resolveGroup(ctx, input.GroupName)
	if err != nil {
		return nil, err
	}

	// Cheap rejection before scoring; the insert below re-checks the quota
	// under a lock, so a race here cannot overshoot the limit.
	count, err := s.submissionRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions for group %d: %w", group.ID, err)
	}
	if count >= s.maxPerGroup {
		return nil, &QuotaExceededError{GroupName: group.Name, Limit: s.maxPerGroup, Count: count}
	}

	result, err := s.engine.Score(input.Predictions)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		GroupID:          group.ID,
		RightPredictions: result.RightPredictions,
		WrongPredictions: result.WrongPredictions,
		CCE:              result.CCE,
	}
	count, err = s.submissionRepo.CreateWithinQuota(ctx, submission, s.maxPerGroup)
	if err != nil {
		if errors.Is(err, repositories.ErrSubmissionQuotaExceeded) {
			return nil, &QuotaExceededError{GroupName: group.Name, Limit: s.maxPerGroup, Count: count}
		}
		return nil, fmt.Errorf("failed to persist submission for group %d: %w", group.ID, err)
	}

	return &SubmitResult{Group: group, Submission: submission}, nil
}

func (s *submissionService) DeleteGroup(ctx context.Context, name string) error {
	if name == "" {
		return ErrGroupNameRequired
	}

	group, err := s.groupRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to look up group %q: %w", name, err)
	}

	if err := s.groupRepo.Delete(ctx, group.ID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGroupHasSubmissions):
			return ErrGroupHasSubmissions
		case errors.Is(err, repositories.ErrGroupNotFound):
			return ErrGroupNotFound
		default:
			return fmt.Errorf("failed to delete group %d: %w", group.ID, err)
		}
	}
	return nil
}

// resolveGroup finds the group case-insensitively or creates it. The first
// submitter under a new name wins the canonical casing; a concurrent create
// under another casing is resolved by retrying the lookup.
func (s *submissionService) resolveGroup(ctx context.Context, name string) (*models.Group, error) {
	group, err := s.groupRepo.GetByName(ctx, name)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, repositories.ErrGroupNotFound) {
		return nil, fmt.Errorf("failed to look up group %q: %w", name, err)
	}

	group = &models.Group{Name: name}
	createErr := s.groupRepo.Create(ctx, group)
	if createErr == nil {
		return group, nil
	}
	if errors.Is(createErr, repositories.ErrGroupNameConflict) {
		group, err = s.groupRepo.GetByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to re-fetch group %q after conflict: %w", name, err)
		}
		return group, nil
	}
	return nil, fmt.Errorf("failed to create group %q: %w", name, createErr)
}
