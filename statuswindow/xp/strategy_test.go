package xp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

func TestEqualDistributorSplitsEvenly(t *testing.T) {
	categories := &models.Categories{
		Themes: []models.CategoryRef{{ID: "t1", Name: "Health"}},
		Skills: []models.CategoryRef{{ID: "s1", Name: "Running"}},
	}

	dist := EqualDistributor{}.Distribute(nil, categories, 50)

	require.Len(t, dist, 2)
	assert.InDelta(t, 25, dist["theme:t1"], 0.001)
	assert.InDelta(t, 25, dist["skill:s1"], 0.001)
}

func TestEqualDistributorNoTargets(t *testing.T) {
	assert.Empty(t, EqualDistributor{}.Distribute(nil, &models.Categories{}, 50))
	assert.Empty(t, EqualDistributor{}.Distribute(nil, nil, 50))
}

func TestWeightedDistributorUsesConfidence(t *testing.T) {
	categories := &models.Categories{
		Themes: []models.CategoryRef{{ID: "t1", Name: "Health", Confidence: 0.9}},
		Skills: []models.CategoryRef{{ID: "s1", Name: "Running", Confidence: 0.3}},
	}

	dist := WeightedDistributor{}.Distribute(nil, categories, 120)

	require.Len(t, dist, 2)
	assert.InDelta(t, 90, dist["theme:t1"], 0.001)
	assert.InDelta(t, 30, dist["skill:s1"], 0.001)
}

func TestWeightedDistributorUnscoredWeighsOne(t *testing.T) {
	categories := &models.Categories{
		Themes: []models.CategoryRef{
			{ID: "t1", Name: "Health", Confidence: 0.5},
			{ID: "t2", Name: "Work"},
		},
	}

	dist := WeightedDistributor{}.Distribute(nil, categories, 150)

	assert.InDelta(t, 50, dist["theme:t1"], 0.001)
	assert.InDelta(t, 100, dist["theme:t2"], 0.001)
}

func TestProportionalDistributorCountsMentions(t *testing.T) {
	entry := &models.JournalEntry{Content: "Went running today. Running felt great, good for my health."}
	categories := &models.Categories{
		Themes: []models.CategoryRef{{ID: "t1", Name: "Health"}},
		Skills: []models.CategoryRef{{ID: "s1", Name: "Running"}},
	}

	dist := ProportionalDistributor{}.Distribute(entry, categories, 90)

	require.Len(t, dist, 2)
	assert.InDelta(t, 30, dist["theme:t1"], 0.001)
	assert.InDelta(t, 60, dist["skill:s1"], 0.001)
}

func TestProportionalDistributorFallsBackToEqual(t *testing.T) {
	entry := &models.JournalEntry{Content: "An uneventful day."}
	categories := &models.Categories{
		Themes: []models.CategoryRef{{ID: "t1", Name: "Health"}},
		Skills: []models.CategoryRef{{ID: "s1", Name: "Running"}},
	}

	dist := ProportionalDistributor{}.Distribute(entry, categories, 50)

	assert.InDelta(t, 25, dist["theme:t1"], 0.001)
	assert.InDelta(t, 25, dist["skill:s1"], 0.001)
}

func TestSplitTargetKey(t *testing.T) {
	targetType, id, err := SplitTargetKey("theme:abc")
	require.NoError(t, err)
	assert.Equal(t, "theme", targetType)
	assert.Equal(t, "abc", id)

	_, _, err = SplitTargetKey("garbage")
	assert.Error(t, err)
}
