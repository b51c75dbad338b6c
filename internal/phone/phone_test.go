package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		hint string
		want Number
	}{
		{
			name: "empty input",
			raw:  "",
			want: Number{},
		},
		{
			name: "whitespace only",
			raw:  "   ",
			want: Number{},
		},
		{
			name: "formatted canadian area code",
			raw:  "(519) 717-4414",
			want: Number{Digits: "5197174414", CallingCode: "+1", CountryCode: "CA"},
		},
		{
			name: "bare us area code defaults to US",
			raw:  "212-555-0173",
			want: Number{Digits: "2125550173", CallingCode: "+1", CountryCode: "US"},
		},
		{
			name: "region hint wins over area code detection",
			raw:  "2125550173",
			hint: "CA",
			want: Number{Digits: "2125550173", CallingCode: "+1", CountryCode: "CA"},
		},
		{
			name: "province hint normalized to CA",
			raw:  "416 555 0199",
			hint: "ON",
			want: Number{Digits: "4165550199", CallingCode: "+1", CountryCode: "CA"},
		},
		{
			name: "french local format",
			raw:  "06 10 20 30 40",
			want: Number{Digits: "610203040", CallingCode: "+33", CountryCode: "FR"},
		},
		{
			name: "international north american",
			raw:  "+1 (519) 717-4414",
			hint: "ON",
			want: Number{Digits: "5197174414", CallingCode: "+1", CountryCode: "CA"},
		},
		{
			name: "international north american without hint",
			raw:  "+12125550173",
			want: Number{Digits: "2125550173", CallingCode: "+1", CountryCode: "US"},
		},
		{
			name: "international french with leading zero",
			raw:  "+33 06 10 20 30 40",
			want: Number{Digits: "610203040", CallingCode: "+33", CountryCode: "FR"},
		},
		{
			name: "international french without leading zero",
			raw:  "+33 6 10 20 30 40",
			want: Number{Digits: "610203040", CallingCode: "+33", CountryCode: "FR"},
		},
		{
			name: "international uk",
			raw:  "+44 020 7946 0958",
			want: Number{Digits: "2079460958", CallingCode: "+44", CountryCode: "GB"},
		},
		{
			name: "unrecognized international prefix",
			raw:  "+49 30 901820",
			want: Number{Digits: "4930901820"},
		},
		{
			name: "too short falls through unannotated",
			raw:  "555-0173",
			want: Number{Digits: "5550173"},
		},
		{
			name: "non numeric content falls through",
			raw:  "call me maybe",
			want: Number{Digits: "callmemaybe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, tt.hint))
		})
	}
}

func TestNormalizeRegion(t *testing.T) {
	assert.Equal(t, "CA", NormalizeRegion("ON"))
	assert.Equal(t, "CA", NormalizeRegion("qc"))
	assert.Equal(t, "US", NormalizeRegion("us"))
	assert.Equal(t, "FR", NormalizeRegion(" fr "))
	assert.Equal(t, "", NormalizeRegion(""))
}
