package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellReport(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  CellReport
		expectErr bool
	}{
		{
			name:     "Standard format",
			raw:      "ATT CID:4521 LAC:120",
			expected: CellReport{CID: 4521, LAC: 120},
		},
		{
			name:     "Without prefix",
			raw:      "CID:4521 LAC:120",
			expected: CellReport{CID: 4521, LAC: 120},
		},
		{
			name:     "Lower case with equals",
			raw:      "att cid=4521 lac=120",
			expected: CellReport{CID: 4521, LAC: 120},
		},
		{
			name:     "Space separators and reversed order",
			raw:      "LAC 120 CID 4521",
			expected: CellReport{CID: 4521, LAC: 120},
		},
		{
			name:     "With MCC and MNC",
			raw:      "ATT CID:4521 LAC:120 MCC:404 MNC:45",
			expected: CellReport{CID: 4521, LAC: 120, MCC: 404, MNC: 45},
		},
		{
			name:      "Missing LAC",
			raw:       "ATT CID:4521",
			expectErr: true,
		},
		{
			name:      "Plain text",
			raw:       "hello world",
			expectErr: true,
		},
		{
			name:      "Empty",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "Non numeric",
			raw:       "CID:abc LAC:def",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCellReport(tc.raw)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrNoCellData)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestLooksLikeCellReport(t *testing.T) {
	assert.True(t, LooksLikeCellReport("ATT CID:1 LAC:2"))
	assert.False(t, LooksLikeCellReport("CHECKIN"))
	assert.False(t, LooksLikeCellReport("CID:1"))
}

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		raw      string
		expected Keyword
	}{
		{raw: "CHECKIN", expected: KeywordCheckIn},
		{raw: "  checkin ", expected: KeywordCheckIn},
		{raw: "Check In", expected: KeywordCheckIn},
		{raw: "checkout", expected: KeywordCheckOut},
		{raw: "status", expected: KeywordStatus},
		{raw: "HELP", expected: KeywordHelp},
		{raw: "hello world", expected: KeywordUnknown},
		{raw: "", expected: KeywordUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseCommand(tc.raw))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
	}{
		{raw: "9876543210", expected: "+919876543210"},
		{raw: "+91 98765-43210", expected: "+919876543210"},
		{raw: "919876543210", expected: "+919876543210"},
		{raw: "(987) 654-3210", expected: "+919876543210"},
		{raw: "+14155550100", expected: "+14155550100"},
		{raw: "n/a", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizePhone(tc.raw, "91"))
		})
	}
}
