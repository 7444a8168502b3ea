package pedigree

import "testing"

func TestParseSex(t *testing.T) {
	tests := []struct {
		in   string
		want Sex
	}{
		{"M", Male},
		{"male", Male},
		{"1", Male},
		{" F ", Female},
		{"2", Female},
		{"", SexUnknown},
		{"?", SexUnknown},
	}
	for _, tt := range tests {
		if got := ParseSex(tt.in); got != tt.want {
			t.Errorf("ParseSex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if Female.String() != "F" || SexUnknown.String() != "U" {
		t.Error("unexpected sex codes")
	}
}
