package laptime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		ms   int
		want string
	}{
		{name: "zero", ms: 0, want: "00:00.000"},
		{name: "sub minute", ms: 59999, want: "00:59.999"},
		{name: "typical gt3 lap", ms: 107312, want: "01:47.312"},
		{name: "example A", ms: 93700, want: "01:33.700"},
		{name: "long lap", ms: 8*60000 + 1005, want: "08:01.005"},
		{name: "negative clamps", ms: -5, want: "00:00.000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.ms))
		})
	}
}

func TestFormatGap(t *testing.T) {
	assert.Equal(t, "0.000", FormatGap(0))
	assert.Equal(t, "5.600", FormatGap(5600))
	assert.Equal(t, "0.007", FormatGap(7))
	assert.Equal(t, "61.250", FormatGap(61250))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "01:33.700", want: 93700},
		{in: "1:33.7", want: 93700},
		{in: "88.1", want: 88100},
		{in: "00:59.999", want: 59999},
		{in: " 02:00 ", want: 120000},
		{in: "", wantErr: true},
		{in: "xx:10.000", wantErr: true},
		{in: "01:75.000", wantErr: true},
		{in: "01:10.1234", wantErr: true},
		{in: "01:10.", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, ms := range []int{0, 1, 999, 60000, 107312, 599999} {
		got, err := Parse(Format(ms))
		require.NoError(t, err)
		assert.Equal(t, ms, got)
	}
}
