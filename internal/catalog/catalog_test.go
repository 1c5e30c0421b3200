package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupKnownIDs(t *testing.T) {
	c := Default()

	sc, err := c.SizeCategory("medium")
	require.NoError(t, err)
	require.Equal(t, 5.0, sc.ServiceTimeMin)
	require.False(t, sc.Pallet)

	pal, err := c.SizeCategory("pallet")
	require.NoError(t, err)
	require.True(t, pal.Pallet)

	ss, err := c.ServiceStandard("residential")
	require.NoError(t, err)
	require.Equal(t, 15.0, ss.BaseTimeMin)
}

func TestLookupUnknownIDIsNotFound(t *testing.T) {
	c := Default()

	_, err := c.SizeCategory("envelope")
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), "envelope")

	_, err = c.ServiceStandard("drone")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewRejectsBadEntries(t *testing.T) {
	_, err := New([]SizeCategory{{ID: "a"}, {ID: "a"}}, nil)
	require.Error(t, err)

	_, err = New([]SizeCategory{{ID: ""}}, nil)
	require.Error(t, err)

	_, err = New(nil, []ServiceStandard{{ID: "x", BaseTimeMin: -1}})
	require.Error(t, err)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	seed := `
sizeCategories:
  - id: medium
    name: Medium Tote
    unitVolumeFt3: 10
    unitWeightLb: 40
    serviceTimeMin: 4
  - id: half-pallet
    name: Half Pallet
    unitVolumeFt3: 32
    unitWeightLb: 800
    serviceTimeMin: 10
    pallet: true
serviceStandards:
  - id: locker
    name: Parcel Locker
    baseTimeMin: 5
    perItemMin: 0.5
    setupTimeMin: 2
    signatureTimeMin: 0
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	// Overridden default.
	md, err := c.SizeCategory("medium")
	require.NoError(t, err)
	require.Equal(t, 10.0, md.UnitVolumeFt3)
	require.Equal(t, 4.0, md.ServiceTimeMin)

	// Custom additions.
	hp, err := c.SizeCategory("half-pallet")
	require.NoError(t, err)
	require.True(t, hp.Pallet)

	lk, err := c.ServiceStandard("locker")
	require.NoError(t, err)
	require.Equal(t, 5.0, lk.BaseTimeMin)

	// Untouched defaults survive.
	_, err = c.SizeCategory("pallet")
	require.NoError(t, err)
	_, err = c.ServiceStandard("commercial")
	require.NoError(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
