package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		swiss   bool
		want    float64
		wantErr bool
	}{
		{
			name: "apostrophe grouping",
			raw:  "199'080",
			want: 199080,
		},
		{
			name: "apostrophe grouping with decimal",
			raw:  "1'234'567.89",
			want: 1234567.89,
		},
		{
			name: "apostrophe grouping with decimal comma",
			raw:  "1'234'567,89",
			want: 1234567.89,
		},
		{
			name: "comma grouping with period decimal",
			raw:  "1,234,567.89",
			want: 1234567.89,
		},
		{
			name: "period grouping with comma decimal",
			raw:  "1.234.567,89",
			want: 1234567.89,
		},
		{
			name: "single comma with three trailing digits is grouping",
			raw:  "199,080",
			want: 199080,
		},
		{
			name: "single comma with two trailing digits is decimal",
			raw:  "199,08",
			want: 199.08,
		},
		{
			name: "single period with three trailing digits is grouping",
			raw:  "199.080",
			want: 199080,
		},
		{
			name:  "swiss locale keeps period as decimal",
			raw:   "199.080",
			swiss: true,
			want:  199.08,
		},
		{
			name: "plain integer",
			raw:  "366223",
			want: 366223,
		},
		{
			name: "plain decimal",
			raw:  "0.25",
			want: 0.25,
		},
		{
			name:    "invalid apostrophe grouping",
			raw:     "19'80",
			wantErr: true,
		},
		{
			name:    "negative amount rejected",
			raw:     "-500",
			wantErr: true,
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw, tt.swiss)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}
