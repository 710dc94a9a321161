package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEntities(t *testing.T) {
	t.Run("sorted unique union of winners and losers", func(t *testing.T) {
		table := OutcomeTable{
			{Period: 1, Winner: "Texas", Loser: "Alabama"},
			{Period: 1, Winner: "Georgia", Loser: "Clemson"},
			{Period: 2, Winner: "Alabama", Loser: "Georgia"},
			{Period: 3, Winner: "Texas", Loser: "Clemson"},
		}

		entities, err := ExtractEntities(table)
		require.NoError(t, err)
		assert.Equal(t, []Entity{"Alabama", "Clemson", "Georgia", "Texas"}, entities)
	})

	t.Run("entity only ever losing is included", func(t *testing.T) {
		entities, err := ExtractEntities(OutcomeTable{{Period: 0, Winner: "A", Loser: "Z"}})
		require.NoError(t, err)
		assert.Equal(t, []Entity{"A", "Z"}, entities)
	})

	t.Run("empty table is an input error", func(t *testing.T) {
		entities, err := ExtractEntities(nil)
		assert.Nil(t, entities)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInput))
		assert.True(t, errors.Is(err, ErrEmptyOutcomeTable))
	})
}

func TestOutcomeTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		table   OutcomeTable
		wantErr bool
	}{
		{name: "valid", table: OutcomeTable{{Period: 0, Winner: "A", Loser: "B"}}},
		{name: "negative period", table: OutcomeTable{{Period: -1, Winner: "A", Loser: "B"}}, wantErr: true},
		{name: "empty winner", table: OutcomeTable{{Period: 1, Winner: "", Loser: "B"}}, wantErr: true},
		{name: "empty loser", table: OutcomeTable{{Period: 1, Winner: "A"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOutcomeTable_MaxPeriod(t *testing.T) {
	assert.Equal(t, -1, OutcomeTable{}.MaxPeriod())
	assert.Equal(t, 7, OutcomeTable{
		{Period: 3, Winner: "A", Loser: "B"},
		{Period: 7, Winner: "B", Loser: "C"},
		{Period: 5, Winner: "C", Loser: "A"},
	}.MaxPeriod())
}
