package core

import "testing"

func TestClassifyPortWidth(t *testing.T) {
	cases := []struct {
		name string
		mask uint32
		want int
	}{
		{"low byte", 0x0000007F, 1},
		{"high byte", 0xFF000000, 1},
		{"one of four middle bytes", 0x0000FF00, 1},
		{"lower half-word", 0x0000FFFF, 2},
		{"upper half-word", 0xFFFF0000, 2},
		{"straddles middle half-word", 0x00FFFF00, 4},
		{"spans all four bytes", 0xFFFFFFFF, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := classifyPortWidth(c.mask); got != c.want {
				t.Errorf("classifyPortWidth(%#x) = %d, want %d", c.mask, got, c.want)
			}
		})
	}
}

func TestPaddedColumns(t *testing.T) {
	cases := []struct {
		width, chunk, want int
	}{
		{64, 1, 64},
		{64, 8, 64},
		{65, 8, 72},
		{1, 8, 8},
		{100, 64, 128},
		{64, 0, 64},
	}
	for _, c := range cases {
		if got := paddedColumns(c.width, c.chunk); got != c.want {
			t.Errorf("paddedColumns(%d,%d) = %d, want %d", c.width, c.chunk, got, c.want)
		}
	}
}
