package version

import (
	"sort"
	"testing"
)

func TestParseAndString(t *testing.T) {
	cases := []string{"1", "1.0", "1.2.3", "1.2-pre3", "1.2-rc1", "1.2-post1", "1.0-1"}
	for _, s := range cases {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", s, err)
		}
		if got := v.String(); got != s {
			t.Errorf("Parse(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{"", "abc", "1..2", "-1.0"}
	for _, s := range cases {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", s)
		}
	}
}

func TestTotalOrder(t *testing.T) {
	// pre < rc < (none) < post, then dotted-integer comparison.
	ordered := []string{
		"1.0-pre1",
		"1.0-pre2",
		"1.0-rc1",
		"1.0",
		"1.0-post1",
		"1.0.1",
		"1.1",
		"2.0",
	}
	vs := make([]Version, len(ordered))
	for i, s := range ordered {
		vs[i] = MustParse(s)
	}
	for i := 0; i < len(vs)-1; i++ {
		if !vs[i].Less(vs[i+1]) {
			t.Errorf("expected %s < %s", vs[i], vs[i+1])
		}
	}

	shuffled := []Version{vs[4], vs[0], vs[7], vs[2], vs[1], vs[6], vs[3], vs[5]}
	sort.Slice(shuffled, func(i, j int) bool { return shuffled[i].Less(shuffled[j]) })
	for i := range shuffled {
		if !shuffled[i].Equal(vs[i]) {
			t.Errorf("position %d: got %s, want %s", i, shuffled[i], vs[i])
		}
	}
}

func TestEqualityImpliesEqualHash(t *testing.T) {
	a := MustParse("1.2.3-pre4")
	b, _ := Parse("1.2.3-pre4")
	if !a.Equal(b) {
		t.Fatal("expected equal")
	}
	if a.Hash() != b.Hash() {
		t.Errorf("equal versions must hash equal: %q vs %q", a.Hash(), b.Hash())
	}
}

func TestCompareExactlyOneHolds(t *testing.T) {
	samples := []string{"1.0", "1.0-pre1", "1.0-post1", "1.0.0", "2", "1.0.1"}
	for _, as := range samples {
		for _, bs := range samples {
			a, b := MustParse(as), MustParse(bs)
			lt := a.Compare(b) < 0
			eq := a.Compare(b) == 0
			gt := a.Compare(b) > 0
			count := 0
			for _, x := range []bool{lt, eq, gt} {
				if x {
					count++
				}
			}
			if count != 1 {
				t.Errorf("Compare(%s,%s) must hold exactly one of <,=,>; got lt=%v eq=%v gt=%v", as, bs, lt, eq, gt)
			}
		}
	}
}
