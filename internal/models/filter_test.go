package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixFilterNormalize(t *testing.T) {
	var f FixFilter
	f.Normalize()
	require.Equal(t, 1, f.Page)
	require.Equal(t, 100, f.PageSize)

	f = FixFilter{Page: 3, PageSize: 20000}
	f.Normalize()
	require.Equal(t, 3, f.Page)
	require.Equal(t, 10000, f.PageSize)
}

func TestPatchFilterNormalize(t *testing.T) {
	var f PatchFilter
	f.Normalize()
	require.Equal(t, 1, f.Page)
	require.Equal(t, 100, f.PageSize)

	f = PatchFilter{Page: 2, PageSize: 5000}
	f.Normalize()
	require.Equal(t, 2, f.Page)
	require.Equal(t, 1000, f.PageSize)
}
