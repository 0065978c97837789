package report

import (
	"testing"

	"github.com/de-tools/research-reports/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func cell(sex, race, ethnicity any, count int32) bson.M {
	return bson.M{
		"_id":   bson.M{"sex": sex, "race": race, "ethnicity": ethnicity},
		"count": count,
	}
}

func TestReconcileDemographics(t *testing.T) {
	const (
		asian    = "Asian"
		white    = "White"
		notHisp  = "Not Hispanic or Latino"
		hispanic = "Hispanic or Latino"
		unr      = domain.UnknownOrNotReported
	)

	t.Run("null race counts as unknown", func(t *testing.T) {
		grid, total, err := ReconcileDemographics([]bson.M{cell("female", nil, notHisp, 4)})
		require.NoError(t, err)

		assert.Equal(t, int64(4), total)
		assert.Equal(t, int64(4), grid.Races[unr].Ethnicities[notHisp]["Female"])
		assert.Equal(t, int64(4), grid.Races[unr].Total)
		assert.Equal(t, int64(4), grid.Total.Ethnicities[notHisp]["Female"])
		assert.Equal(t, int64(4), grid.Total.Total)
	})

	t.Run("sex is capitalized and unlisted values fall back", func(t *testing.T) {
		grid, total, err := ReconcileDemographics([]bson.M{
			cell("male", asian, hispanic, 2),
			cell("other", white, "Martian", 3),
			cell(nil, "Total", nil, 1),
			cell(int32(7), 42, true, 1),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(7), total)
		assert.Equal(t, int64(2), grid.Races[asian].Ethnicities[hispanic]["Male"])
		assert.Equal(t, int64(3), grid.Races[white].Ethnicities[unr][unr])
		assert.Equal(t, int64(2), grid.Races[unr].Ethnicities[unr][unr])
		assert.NotContains(t, grid.Races, "Total")
	})

	t.Run("missing fields count as unknown", func(t *testing.T) {
		grid, total, err := ReconcileDemographics([]bson.M{
			{"_id": bson.M{"sex": "female"}, "count": int64(5)},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Equal(t, int64(5), grid.Races[unr].Ethnicities[unr]["Female"])
	})

	t.Run("subtotals add up", func(t *testing.T) {
		grid, total, err := ReconcileDemographics([]bson.M{
			cell("female", asian, notHisp, 3),
			cell("male", asian, hispanic, 5),
			cell("female", white, hispanic, 7),
			cell(nil, nil, nil, 11),
		})
		require.NoError(t, err)

		var raceTotals int64
		for _, race := range domain.Races {
			row := grid.Races[race]
			var leaves int64
			for _, eth := range domain.Ethnicities {
				for _, sex := range domain.Sexes {
					assert.GreaterOrEqual(t, row.Ethnicities[eth][sex], int64(0))
					leaves += row.Ethnicities[eth][sex]
				}
			}
			assert.Equal(t, row.Total, leaves, race)
			raceTotals += row.Total
		}
		assert.Equal(t, total, raceTotals)
		assert.Equal(t, total, grid.Total.Total)
		assert.Equal(t, int64(26), total)
	})

	t.Run("idempotent over a fresh grid", func(t *testing.T) {
		records := []bson.M{
			cell("female", asian, notHisp, 3),
			cell("male", nil, hispanic, 1),
			cell("other", white, nil, 2),
		}
		first, firstTotal, err := ReconcileDemographics(records)
		require.NoError(t, err)
		second, secondTotal, err := ReconcileDemographics(records)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, firstTotal, secondTotal)
	})

	t.Run("empty input yields zero-filled grid", func(t *testing.T) {
		grid, total, err := ReconcileDemographics(nil)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Equal(t, domain.NewDemographicsGrid(), grid)
	})
}

func TestReconcileDemographics_Malformed(t *testing.T) {
	tests := []struct {
		name string
		rec  bson.M
	}{
		{name: "missing count", rec: bson.M{"_id": bson.M{"sex": "male"}}},
		{name: "string count", rec: bson.M{"_id": bson.M{"sex": "male"}, "count": "3"}},
		{name: "negative count", rec: bson.M{"_id": bson.M{}, "count": int32(-1)}},
		{name: "scalar id", rec: bson.M{"_id": 1, "count": int32(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReconcileDemographics([]bson.M{tt.rec})
			assert.ErrorIs(t, err, ErrMalformedResult)
			assert.NotErrorIs(t, err, ErrAggregationFailure)
		})
	}
}
