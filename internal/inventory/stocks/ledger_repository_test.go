package stocks

import (
	"fmt"
	"testing"

	"stockroom/pkg/metadata"
	"stockroom/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
)

func TestAdjustStatementGuardsNegativeQuantity(t *testing.T) {
	db := goqu.New("postgres", nil)

	testCases := []struct {
		name  string
		class models.ItemClass
		delta int
		table string
	}{
		{name: "deduction from a raw material", class: models.ClassMaterial, delta: -3, table: "raw_materials"},
		{name: "credit to a product", class: models.ClassProduct, delta: 5, table: "products"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, _, err := adjustStatement(db, tc.class, 7, tc.delta).ToSQL()
			assert.NoError(t, err)

			assert.Contains(t, sql, fmt.Sprintf(`UPDATE "%s"`, tc.table))
			assert.Contains(t, sql, fmt.Sprintf("quantity + %d >= 0", tc.delta))
			assert.Contains(t, sql, fmt.Sprintf("quantity + %d", tc.delta))
			assert.Contains(t, sql, `RETURNING "id"`)
		})
	}
}

// The CASE in the UPDATE is the only place the status boundaries exist in SQL.
// Pin its exact shape so it cannot drift from metadata.Classify.
func TestAdjustStatementDerivesStatusLikeClassify(t *testing.T) {
	db := goqu.New("postgres", nil)

	sql, _, err := adjustStatement(db, models.ClassProduct, 7, -3).ToSQL()
	assert.NoError(t, err)

	expectedCase := fmt.Sprintf(
		"CASE WHEN quantity + -3 = 0 THEN '%s' WHEN quantity + -3 <= reorder_level THEN '%s' ELSE '%s' END",
		metadata.StatusOutOfStock, metadata.StatusLowStock, metadata.StatusInStock,
	)
	assert.Contains(t, sql, expectedCase)

	// The branches above, in order, at their post-update boundary points.
	assert.Equal(t, metadata.StatusOutOfStock, metadata.Classify(0, 10))
	assert.Equal(t, metadata.StatusLowStock, metadata.Classify(1, 10))
	assert.Equal(t, metadata.StatusLowStock, metadata.Classify(10, 10))
	assert.Equal(t, metadata.StatusInStock, metadata.Classify(11, 10))
}
