package core

import (
	"testing"
)

func TestAABB_Union(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	b := NewAABB(NewVec3(2, 2, 2), NewVec3(3, 3, 3))

	u := a.Union(b)
	if u.Min != (Vec3{}) || u.Max != NewVec3(3, 3, 3) {
		t.Errorf("Union = %+v, want Min {0 0 0} Max {3 3 3}", u)
	}
}

func TestAABBFromPoints_BoundsAllGivenPoints(t *testing.T) {
	box := NewAABBFromPoints(NewVec3(1, -2, 3), NewVec3(-4, 5, 0), NewVec3(2, 2, 2))
	if box.Min != NewVec3(-4, -2, 0) {
		t.Errorf("Min = %+v, want {-4 -2 0}", box.Min)
	}
	if box.Max != NewVec3(2, 5, 3) {
		t.Errorf("Max = %+v, want {2 5 3}", box.Max)
	}
}
