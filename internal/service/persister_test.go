package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingo-server/internal/models"
)

func TestOrderUsages_DedupeKeepsFirstPosition(t *testing.T) {
	storyID := uuid.New()
	sun := models.Word{ID: uuid.New(), Text: "sun"}
	moon := models.Word{ID: uuid.New(), Text: "moon"}

	usages := orderUsages(storyID, []string{"sun", "sun", "moon"}, []models.Word{sun, moon})

	require.Len(t, usages, 2)
	assert.Equal(t, sun.ID, usages[0].WordID)
	assert.Equal(t, 0, usages[0].Ord)
	assert.Equal(t, moon.ID, usages[1].WordID)
	assert.Equal(t, 1, usages[1].Ord)
}

func TestOrderUsages_UnresolvedWordsSkipped(t *testing.T) {
	storyID := uuid.New()
	river := models.Word{ID: uuid.New(), Text: "river"}

	usages := orderUsages(storyID, []string{"ghost", "river", "phantom"}, []models.Word{river})

	require.Len(t, usages, 1)
	assert.Equal(t, river.ID, usages[0].WordID)
	// Ord is dense over the surviving entries, not the reported list.
	assert.Equal(t, 0, usages[0].Ord)
}

func TestOrderUsages_PreservesReportOrder(t *testing.T) {
	storyID := uuid.New()
	a := models.Word{ID: uuid.New(), Text: "alpha"}
	b := models.Word{ID: uuid.New(), Text: "beta"}
	c := models.Word{ID: uuid.New(), Text: "gamma"}

	// Catalog rows arrive in arbitrary order.
	usages := orderUsages(storyID, []string{"gamma", "alpha", "beta"}, []models.Word{a, b, c})

	require.Len(t, usages, 3)
	assert.Equal(t, c.ID, usages[0].WordID)
	assert.Equal(t, a.ID, usages[1].WordID)
	assert.Equal(t, b.ID, usages[2].WordID)
	for i, u := range usages {
		assert.Equal(t, i, u.Ord)
		assert.Equal(t, storyID, u.StoryID)
	}
}

func TestOrderUsages_Empty(t *testing.T) {
	assert.Empty(t, orderUsages(uuid.New(), nil, nil))
	assert.Empty(t, orderUsages(uuid.New(), []string{"sun"}, nil))
}

func TestOrderUsages_CaseSensitive(t *testing.T) {
	storyID := uuid.New()
	sun := models.Word{ID: uuid.New(), Text: "sun"}

	usages := orderUsages(storyID, []string{"Sun"}, []models.Word{sun})
	assert.Empty(t, usages)
}
