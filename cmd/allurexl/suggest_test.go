package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ancients-collective/allurexl/internal/types"
)

func rowsWithIDs(ids ...string) []types.ReportRow {
	rows := make([]types.ReportRow, len(ids))
	for i, id := range ids {
		rows[i] = types.ReportRow{TestCaseID: id}
	}
	return rows
}

// ── levenshtein tests ────────────────────────────────────────────────

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"abc", "abc", 0},
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"cat", "car", 1},
		{"cat", "cats", 1},
		{"cats", "cat", 1},
		{"kitten", "sitting", 3},
		{"TC_LOGIN_001", "TC_LOGIN_01", 1},
		{"TC_USERS_014", "TC_LOGIN_014", 5},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, levenshtein(tt.b, tt.a))
		})
	}
}

// ── suggestIDs tests ─────────────────────────────────────────────────

func TestSuggestIDs_CloseMatch(t *testing.T) {
	rows := rowsWithIDs("TC_LOGIN_001", "TC_LOGIN_002", "TC_DASHBOARD_001", "test_branch_filters")

	suggestions := suggestIDs("TC_LOGIN_01", rows)
	assert.NotEmpty(t, suggestions)
	assert.Equal(t, "TC_LOGIN_001", suggestions[0])
}

func TestSuggestIDs_NoMatch(t *testing.T) {
	suggestions := suggestIDs("zzzzzzzzzzzzzzzzzzz", rowsWithIDs("TC_LOGIN_001", "TC_USERS_002"))
	assert.Empty(t, suggestions)
}

func TestSuggestIDs_MaxThree(t *testing.T) {
	suggestions := suggestIDs("TC_A_00X", rowsWithIDs("TC_A_001", "TC_A_002", "TC_A_003", "TC_A_004", "TC_A_005"))
	assert.Equal(t, []string{"TC_A_001", "TC_A_002", "TC_A_003"}, suggestions)
}

func TestSuggestIDs_ExactMatchExcluded(t *testing.T) {
	assert.Empty(t, suggestIDs("TC_LOGIN_001", rowsWithIDs("TC_LOGIN_001")))
}

func TestSuggestIDs_DuplicateIDsListedOnce(t *testing.T) {
	suggestions := suggestIDs("TC_LOGIN_01", rowsWithIDs("TC_LOGIN_001", "TC_LOGIN_001", "TC_LOGIN_001"))
	assert.Equal(t, []string{"TC_LOGIN_001"}, suggestions)
}

func TestSuggestIDs_SortedByDistance(t *testing.T) {
	suggestions := suggestIDs("TC_LOGIN_01", rowsWithIDs("TC_LOGON_011", "TC_LOGIN_001", "TC_LOGIN_010"))
	for i := 1; i < len(suggestions); i++ {
		assert.LessOrEqual(t,
			levenshtein("TC_LOGIN_01", suggestions[i-1]),
			levenshtein("TC_LOGIN_01", suggestions[i]))
	}
}

func TestSuggestIDs_EmptyRows(t *testing.T) {
	assert.Empty(t, suggestIDs("TC_LOGIN_001", nil))
}
