package parameters

import "testing"

func TestIndexResolvesMostSpecificRow(t *testing.T) {
	idx := NewIndex[string]()
	idx.Add(BucketKey{SpatialUnit: Wildcard, Species: Wildcard, LandClass: Wildcard, DisturbanceType: Wildcard}, "default")
	idx.Add(BucketKey{SpatialUnit: 1, Species: Wildcard, LandClass: Wildcard, DisturbanceType: Wildcard}, "spatial-unit-1")
	idx.Add(BucketKey{SpatialUnit: 1, Species: 2, LandClass: Wildcard, DisturbanceType: Wildcard}, "spatial-unit-1-species-2")

	got, err := idx.Resolve(BucketKey{SpatialUnit: 1, Species: 2, LandClass: 0, DisturbanceType: 0})
	if err != nil {
		t.Fatal(err)
	}
	if got != "spatial-unit-1-species-2" {
		t.Fatalf("got %q, want most specific match", got)
	}

	got, err = idx.Resolve(BucketKey{SpatialUnit: 1, Species: 9, LandClass: 0, DisturbanceType: 0})
	if err != nil {
		t.Fatal(err)
	}
	if got != "spatial-unit-1" {
		t.Fatalf("got %q, want spatial-unit-only match", got)
	}

	got, err = idx.Resolve(BucketKey{SpatialUnit: 99, Species: 99, LandClass: 0, DisturbanceType: 0})
	if err != nil {
		t.Fatal(err)
	}
	if got != "default" {
		t.Fatalf("got %q, want default wildcard match", got)
	}
}

func TestIndexResolveUnknownKeyErrors(t *testing.T) {
	idx := NewIndex[string]()
	idx.Add(BucketKey{SpatialUnit: 1, Species: Wildcard, LandClass: Wildcard, DisturbanceType: Wildcard}, "row")
	if _, err := idx.Resolve(BucketKey{SpatialUnit: 2, Species: 0, LandClass: 0, DisturbanceType: 0}); err == nil {
		t.Fatal("expected error for unmatched key")
	}
}
