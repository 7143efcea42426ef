package cbmrun

import (
	"os"
	"path/filepath"
	"testing"
)

const testBundleTOML = `
pools = ["Input", "Merch", "Foliage", "Other", "CoarseRoot", "FineRoot", "Snag", "DOM", "SlowAG", "SlowBG", "CO2"]
slow_pools = ["DOM", "SlowAG", "SlowBG"]
slow_mixing_rate = 0.006

[roles]
merch = "Merch"
foliage = "Foliage"
other = "Other"
coarse_root = "CoarseRoot"
fine_root = "FineRoot"
snag = "Snag"
dom = "DOM"
slow_ag = "SlowAG"
slow_bg = "SlowBG"
co2 = "CO2"

[[flux]]
name = "Decay"
process = "decay"
sources = ["DOM", "Snag"]
sinks = ["CO2", "SlowAG", "DOM"]

[volume_to_biomass]
merch = "volume * 0.45"
foliage = "volume * 0.05"
other = "volume * 0.1"
coarse_root = "volume * 0.08"
fine_root = "volume * 0.02"

[[growth_curve]]
ages = [0, 10, 20]
volumes = [0, 100, 150]
[growth_curve.key]
spatial_unit = -1
species = -1
land_class = -1
disturbance_type = -1

[[turnover]]
merch_to_snag = 0.01
foliage_to_dom = 1.0
other_to_dom = 0.02
coarse_root_to_dom = 0.02
fine_root_to_dom = 0.5
snag_to_dom = 0.1
[turnover.key]
spatial_unit = -1
species = -1
land_class = -1
disturbance_type = -1

[[decay]]
pool = "DOM"
base_rate = 0.1
q10 = 2
reference_temp = 10
prop_to_atmosphere = 0.8

[[decay]]
pool = "Snag"
base_rate = 0.05
q10 = 2
reference_temp = 10
prop_to_atmosphere = 0.2

[[disturbance]]
[disturbance.key]
spatial_unit = -1
species = -1
land_class = -1
disturbance_type = 1
[[disturbance.entries]]
source = "Merch"
sink = "Snag"
proportion = 1.0

[[stand]]
id = "stand-1"
area = 1.0
spatial_unit = 1
species = 1
mean_annual_temperature = 10
`

func writeTestBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.toml")
	if err := os.WriteFile(path, []byte(testBundleTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadBundleAndBuild(t *testing.T) {
	path := writeTestBundle(t)
	bundle, err := LoadBundle(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := bundle.Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Engine.State.Len() != 1 {
		t.Fatalf("stand count = %d, want 1", r.Engine.State.Len())
	}
	if r.Engine.PoolMatrix[0][r.Engine.Pools.InputIndex()] != 1.0 {
		t.Fatalf("Input pool = %g, want 1.0", r.Engine.PoolMatrix[0][r.Engine.Pools.InputIndex()])
	}
}

func TestBuildRunsOneStepWithoutError(t *testing.T) {
	path := writeTestBundle(t)
	bundle, err := LoadBundle(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := bundle.Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Engine.Step(r.Params, r.LandClass, nil); err != nil {
		t.Fatalf("Step: %v", err)
	}
	merchIdx, err := r.Engine.Pools.MustIndex("Merch")
	if err != nil {
		t.Fatal(err)
	}
	if r.Engine.PoolMatrix[0][merchIdx] <= 0 {
		t.Fatalf("Merch pool = %g after a step with a growth curve, want > 0", r.Engine.PoolMatrix[0][merchIdx])
	}
}

func TestBuildRejectsUnknownGrowthVariant(t *testing.T) {
	bundle := &Bundle{
		Pools: []string{"Input", "Merch"},
		Roles: PoolRolesBundle{Merch: "Merch", Foliage: "Merch", Other: "Merch", CoarseRoot: "Merch", FineRoot: "Merch", Snag: "Merch", DOM: "Merch", SlowAG: "Merch", SlowBG: "Merch", CO2: "Merch"},
		GrowthVariant: "bogus",
	}
	if _, err := bundle.Build(nil); err == nil {
		t.Fatal("expected an error for an unknown growth_variant")
	}
}

func TestLoadDisturbanceAssociationsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assoc.yaml")
	const doc = `
- key:
    spatial_unit: -1
    species: -1
    land_class: -1
    disturbance_type: 2
  entries:
    - source: Snag
      sink: DOM
      proportion: 1.0
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, err := LoadDisturbanceAssociations(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Key.DisturbanceType != 2 {
		t.Fatalf("DisturbanceType = %d, want 2", rows[0].Key.DisturbanceType)
	}
	if len(rows[0].Entries) != 1 || rows[0].Entries[0].Source != "Snag" {
		t.Fatalf("unexpected entries: %+v", rows[0].Entries)
	}
}
