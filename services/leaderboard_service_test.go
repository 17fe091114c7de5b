package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curious-broccoli/ufo-hackathon/models"
)

// stubRankRepo serves canned ranking rows, already ordered the way the
// database queries order them.
type stubRankRepo struct {
	cceRows   []models.BestCCERow
	rightRows []models.BestChoicesRow
}

func (r *stubRankRepo) CountByGroup(context.Context, int) (int, error) { return 0, nil }

func (r *stubRankRepo) CreateWithinQuota(context.Context, *models.Submission, int) (int, error) {
	return 0, nil
}

func (r *stubRankRepo) BestCCEByGroup(_ context.Context, limit int) ([]models.BestCCERow, error) {
	if limit > len(r.cceRows) {
		limit = len(r.cceRows)
	}
	return r.cceRows[:limit], nil
}

func (r *stubRankRepo) BestRightByGroup(context.Context) ([]models.BestChoicesRow, error) {
	return r.rightRows, nil
}

func choicesRows(values ...int) []models.BestChoicesRow {
	rows := make([]models.BestChoicesRow, len(values))
	for i, v := range values {
		rows[i] = models.BestChoicesRow{GroupID: i + 1, MaxRight: v}
	}
	return rows
}

func TestLeaderboard(t *testing.T) {
	t.Run("best cce is capped at the display limit", func(t *testing.T) {
		repo := &stubRankRepo{
			cceRows: []models.BestCCERow{
				{GroupID: 1, GroupName: "a", MinCCE: 0.1},
				{GroupID: 2, GroupName: "b", MinCCE: 0.5},
				{GroupID: 3, GroupName: "c", MinCCE: 0.9},
				{GroupID: 4, GroupName: "d", MinCCE: 1.3},
			},
		}
		service := NewLeaderboardService(repo, 3)

		leaderboard, err := service.Leaderboard(context.Background())
		require.NoError(t, err)

		require.Len(t, leaderboard.BestCCE, 3)
		assert.Equal(t, "a", leaderboard.BestCCE[0].GroupName)
		assert.Equal(t, "c", leaderboard.BestCCE[2].GroupName)
	})

	t.Run("best choices keeps tie groups whole", func(t *testing.T) {
		repo := &stubRankRepo{rightRows: choicesRows(10, 10, 8, 8, 8, 5)}
		service := NewLeaderboardService(repo, 2)

		leaderboard, err := service.Leaderboard(context.Background())
		require.NoError(t, err)

		// Two tie groups {10,10} and {8,8,8}; the 5 falls outside.
		require.Len(t, leaderboard.BestChoices, 5)
		for i, want := range []int{10, 10, 8, 8, 8} {
			assert.Equal(t, want, leaderboard.BestChoices[i].MaxRight)
		}
	})

	t.Run("best choices without ties behaves like a plain limit", func(t *testing.T) {
		repo := &stubRankRepo{rightRows: choicesRows(9, 7, 4, 2)}
		service := NewLeaderboardService(repo, 3)

		leaderboard, err := service.Leaderboard(context.Background())
		require.NoError(t, err)

		require.Len(t, leaderboard.BestChoices, 3)
		assert.Equal(t, 4, leaderboard.BestChoices[2].MaxRight)
	})

	t.Run("fewer groups than the limit", func(t *testing.T) {
		repo := &stubRankRepo{rightRows: choicesRows(6)}
		service := NewLeaderboardService(repo, 3)

		leaderboard, err := service.Leaderboard(context.Background())
		require.NoError(t, err)
		assert.Len(t, leaderboard.BestChoices, 1)
	})

	t.Run("empty tables", func(t *testing.T) {
		service := NewLeaderboardService(&stubRankRepo{}, 3)

		leaderboard, err := service.Leaderboard(context.Background())
		require.NoError(t, err)
		assert.Empty(t, leaderboard.BestCCE)
		assert.Empty(t, leaderboard.BestChoices)
	})
}
