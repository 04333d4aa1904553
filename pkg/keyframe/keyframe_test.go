package keyframe

import "testing"

func TestKeyframes_SegmentLengthUsesConsecutivePair(t *testing.T) {
	k := Keyframes{Offsets: []float64{0, 0.5, 1.25, 3}}

	cases := []struct {
		i    int
		want float64
	}{
		{0, 0.5},
		{1, 0.75},
		{2, 1.75},
	}
	for _, c := range cases {
		if got := k.SegmentLength(c.i); got != c.want {
			t.Errorf("SegmentLength(%d) = %v, want %v", c.i, got, c.want)
		}
	}
}

func TestKeyframes_Len(t *testing.T) {
	if (Keyframes{}).Len() != 0 {
		t.Error("empty Keyframes should have Len() == 0")
	}
	k := Keyframes{Offsets: []float64{0, 1, 2}}
	if k.Len() != 3 {
		t.Errorf("Len() = %d, want 3", k.Len())
	}
}

func TestNewAnimated_RejectsWrongCount(t *testing.T) {
	k := Keyframes{Offsets: []float64{0, 1, 2}}
	_, err := NewAnimated(k, []int{1, 2})
	if err == nil {
		t.Fatal("expected an error for a mismatched value count")
	}
	countErr, ok := err.(*CountError)
	if !ok {
		t.Fatalf("err = %T, want *CountError", err)
	}
	if countErr.Want != 3 || countErr.Got != 2 {
		t.Errorf("CountError = %+v", countErr)
	}
}

func TestAnimated_AtIndexesByKeyframe(t *testing.T) {
	k := Keyframes{Offsets: []float64{0, 1, 2}}
	a, err := NewAnimated(k, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("NewAnimated: %v", err)
	}
	if got := a.At(2); got != "c" {
		t.Errorf("At(2) = %q, want %q", got, "c")
	}
}
