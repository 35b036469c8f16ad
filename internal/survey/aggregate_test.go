package survey_test

import (
	"encoding/json"
	"testing"

	"github.com/godilite/evalreport/internal/survey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeans_MissingValuesAreSkipped(t *testing.T) {
	tbl := survey.NewTable(
		[]string{"q1", "q2", "q3"},
		[][]string{
			{"Agree", "", "n/a"},
			{"Disagree", "Strongly Agree", ""},
			{"", "Neutral"},
		},
	)

	means := survey.Means(tbl, []string{"q1", "q2", "q3"})

	require.Len(t, means, 3)
	assert.Equal(t, survey.Average{Value: 3.0, Count: 2}, means[0])
	assert.Equal(t, survey.Average{Value: 4.0, Count: 2}, means[1])
	assert.False(t, means[2].Valid())
	assert.Equal(t, 0, means[2].Count)
}

func TestAggregate_InstructorAgainstReference(t *testing.T) {
	tbl := survey.NewTable(
		[]string{"instructor", "q1"},
		[][]string{
			{"Jane Doe", "Agree"},
			{"John Roe", "Strongly Agree"},
			{"Jane Doe", "Disagree"},
			{"", "Strongly Disagree"},
			{" John Roe ", "Neutral"},
		},
	)

	groups := survey.Aggregate(tbl, []string{"q1"}, survey.ByColumn("instructor"))

	require.Len(t, groups, 2)
	assert.Equal(t, "Jane Doe", groups[0].Key)
	assert.Equal(t, 2, groups[0].Records)
	assert.Equal(t, 3.0, groups[0].Rows[0].Group.Value)

	assert.Equal(t, "John Roe", groups[1].Key)
	assert.Equal(t, 4.0, groups[1].Rows[0].Group.Value)

	// (4+5+2+1+3)/5 over every filtered row, blank instructor included.
	for _, g := range groups {
		assert.Equal(t, survey.Average{Value: 3.0, Count: 5}, g.Rows[0].Reference)
	}
}

func TestAggregate_EmptyTable(t *testing.T) {
	groups := survey.Aggregate(&survey.Table{}, []string{"q1"}, survey.ByColumn("instructor"))
	assert.Empty(t, groups)
}

func TestRows_WithoutReference(t *testing.T) {
	rows := survey.Rows([]string{"q1"}, []survey.Average{{Value: 2, Count: 1}}, nil)

	require.Len(t, rows, 1)
	assert.Equal(t, "q1", rows[0].Question)
	assert.False(t, rows[0].Reference.Valid())
}

func TestAverage_JSON(t *testing.T) {
	row := survey.AggregateRow{
		Question: "q1",
		Group:    survey.Average{Value: 4.5, Count: 2},
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"question":"q1","group":{"value":4.5,"count":2},"reference":null}`, string(data))

	var back survey.AggregateRow
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, row, back)
}
