package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input     string
		preferred []string
		expected  time.Time
		layout    string
	}{
		{"01.01.2024", nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DateLayoutRussian},
		{"2024-03-08_14-30-00", nil, time.Date(2024, 3, 8, 14, 30, 0, 0, time.UTC), DateLayoutExport},
		{" \"2024-03-08\" ", nil, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), DateLayoutISO},
		{"15.07.2023 09:15", nil, time.Date(2023, 7, 15, 9, 15, 0, 0, time.UTC), DateLayoutRussianTime},
		{"03/04/2024", []string{DateLayoutSlashEU}, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), DateLayoutSlashEU},
		{"03/04/2024", nil, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), DateLayoutUS},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, layout, err := ParseDate(tt.input, tt.preferred...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.layout, layout)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "yesterday", "31.02.2024"} {
		_, _, err := ParseDate(input)
		assert.Error(t, err, input)
	}
}

func TestMustParseRussian(t *testing.T) {
	d, err := MustParseRussian("29.02.2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", ToISODate(d))
	assert.Equal(t, "29.02.2024", ToRussianFormat(d))

	_, err = MustParseRussian("30.02.2024")
	assert.Error(t, err)
	assert.Equal(t, "", ToRussianFormat(time.Time{}))
}

func TestLooksLikeDate(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"2024-01-01", true},
		{"01.01.2024", true},
		{"2024-01-01_10-00-00", true},
		{"1500.00", false},
		{"-350", false},
		{"Groceries", false},
		{"12.5", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LooksLikeDate(tt.value), tt.value)
	}
}
