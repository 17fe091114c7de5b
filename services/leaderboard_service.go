package services

import (
	"context"
	"fmt"

	"github.com/curious-broccoli/ufo-hackathon/models"
	"github.com/curious-broccoli/ufo-hackathon/repositories"
)

type LeaderboardService interface {
	Leaderboard(ctx context.Context) (*models.Leaderboard, error)
}

type leaderboardService struct {
	submissionRepo repositories.SubmissionRepository
	maxResults     int
}

func NewLeaderboardService(submissionRepo repositories.SubmissionRepository, maxResults int) LeaderboardService {
	return &leaderboardService{
		submissionRepo: submissionRepo,
		maxResults:     maxResults,
	}
}

func (s *leaderboardService) Leaderboard(ctx context.Context) (*models.Leaderboard, error) {
	bestCCE, err := s.submissionRepo.BestCCEByGroup(ctx, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to query best CCE ranking: %w", err)
	}

	bestRight, err := s.submissionRepo.BestRightByGroup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query best choices ranking: %w", err)
	}

	return &models.Leaderboard{
		BestCCE:     bestCCE,
		BestChoices: limitTieGroups(bestRight, s.maxResults),
	}, nil
}

// limitTieGroups cuts the descending ranking after maxGroups distinct
// max-right values, keeping tied rows together: a tie straddling the cut is
// returned whole, so the result may hold more rows than maxGroups.
func limitTieGroups(rows []models.BestChoicesRow, maxGroups int) []models.BestChoicesRow {
	limited := make([]models.BestChoicesRow, 0, len(rows))
	distinct := 0
	for i, row := range rows {
		if i == 0 || row.MaxRight != rows[i-1].MaxRight {
			distinct++
			if distinct > maxGroups {
				break
			}
		}
		limited = append(limited, row)
	}
	return limited
}
