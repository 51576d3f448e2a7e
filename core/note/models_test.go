package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReorder(t *testing.T) {
	resources := []Resource{
		{ID: "a", Order: 1},
		{ID: "b", Order: 2},
		{ID: "c", Order: 3},
	}

	t.Run("rewrites dense order following ids", func(t *testing.T) {
		got := Reorder(resources, []string{"c", "a", "b"})
		require.Len(t, got, 3)
		assert.Equal(t, []string{"c", "a", "b"}, idsOf(got))
		for i, r := range got {
			assert.Equal(t, i+1, r.Order)
		}
		// input untouched
		assert.Equal(t, "a", resources[0].ID)
		assert.Equal(t, 1, resources[0].Order)
	})

	t.Run("unlisted resources keep relative position at the end", func(t *testing.T) {
		got := Reorder(resources, []string{"b"})
		assert.Equal(t, []string{"b", "a", "c"}, idsOf(got))
		assert.Equal(t, []int{1, 2, 3}, ordersOf(got))
	})

	t.Run("repairs sparse order values", func(t *testing.T) {
		sparse := []Resource{{ID: "x", Order: 4}, {ID: "y", Order: 9}}
		got := Reorder(sparse, []string{"y", "x"})
		assert.Equal(t, []int{1, 2}, ordersOf(got))
	})
}

func idsOf(rs []Resource) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func ordersOf(rs []Resource) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.Order
	}
	return out
}
