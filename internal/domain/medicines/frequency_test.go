package medicines

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveFrequency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1-0-1", FrequencyTwiceDaily},
		{"1 - 1 - 1 after food", FrequencyThriceDaily},
		{"0-0-1", FrequencyOnceDaily},
		{"1 tablet", FrequencyOnceDaily},
		{"1 tab morning and night", FrequencyTwiceDaily},
		{"morning, afternoon, night", FrequencyThriceDaily},
		{"twice a day", FrequencyTwiceDaily},
		{"1 cap BD", FrequencyTwiceDaily},
		{"three times a day", FrequencyThriceDaily},
		// la frase explícita manda sobre el conteo de franjas
		{"twice daily (morning, afternoon, night)", FrequencyTwiceDaily},
		{"1 tablet every 8 hours", "every 8 hours"},
		{"6 hourly", "every 6 hours"},
		{"q4h", "every 4 hours"},
		{"on 12-05-2024", FrequencyOnceDaily},
		{"", FrequencyOnceDaily},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveFrequency(tc.in))
		})
	}
}

func TestDosesPerDay(t *testing.T) {
	assert.Equal(t, 1, DosesPerDay(FrequencyOnceDaily))
	assert.Equal(t, 2, DosesPerDay("Twice Daily"))
	assert.Equal(t, 3, DosesPerDay(FrequencyThriceDaily))
	assert.Equal(t, 4, DosesPerDay("every 6 hours"))
	assert.Equal(t, 5, DosesPerDay("every 5 hours"))
	assert.Equal(t, 1, DosesPerDay("every 24 hours"))
	assert.Equal(t, 1, DosesPerDay("whenever"))
}

func TestDurationDays(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"8 Days", 8, true},
		{"5d", 5, true},
		{"One month", 30, true},
		{"2 months", 60, true},
		{"a month", 30, true},
		{"month", 30, true},
		{"2 weeks", 14, true},
		{"a week", 7, true},
		{"ten days", 10, true},
		// días explícitos antes que semanas
		{"10 days (about 2 weeks)", 10, true},
		{"once a day", 0, false},
		{"until review", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := DurationDays(tc.in)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
