package kernel_test

import (
	"math"
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	t.Run("valid coordinates", func(t *testing.T) {
		p, err := kernel.NewGeoPoint(-7.98, 112.63)

		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.InDelta(t, -7.98, p.Lat(), 1e-9)
		assert.InDelta(t, 112.63, p.Lng(), 1e-9)
	})

	t.Run("boundaries are inclusive", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(90, 180)
		require.NoError(t, err)
		_, err = kernel.NewGeoPoint(-90, -180)
		require.NoError(t, err)
	})

	t.Run("out of range values are reported together", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(91, -181)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Contains(t, err.Error(), "is lat")
		assert.Contains(t, err.Error(), "is lng")
	})

	t.Run("NaN is rejected", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(math.NaN(), 0)

		require.Error(t, err)
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var p kernel.GeoPoint

		require.ErrorIs(t, p.Validate(), kernel.ErrGeoPointIsNotConstructed)
	})
}

func TestGeoPoint_DistanceKm(t *testing.T) {
	store, _ := kernel.NewGeoPoint(-7.9666, 112.6326)

	t.Run("same point is zero", func(t *testing.T) {
		d, err := store.DistanceKm(store)

		require.NoError(t, err)
		assert.InDelta(t, 0.0, d, 1e-9)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		a, _ := kernel.NewGeoPoint(0, 0)
		b, _ := kernel.NewGeoPoint(1, 0)

		d, err := a.DistanceKm(b)

		require.NoError(t, err)
		assert.InDelta(t, 111.19, d, 1e-9)
	})

	t.Run("rounded to two decimals", func(t *testing.T) {
		customer, _ := kernel.NewGeoPoint(-7.98, 112.63)

		d, err := store.DistanceKm(customer)

		require.NoError(t, err)
		assert.InDelta(t, d, math.Round(d*100)/100, 1e-12)
		assert.Greater(t, d, 1.0)
		assert.Less(t, d, 2.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		points := [][2]float64{
			{-7.98, 112.63}, {51.5, -0.12}, {-33.86, 151.2}, {40.71, -74.0}, {0, 179.9}, {0, -179.9},
		}
		for _, a := range points {
			for _, b := range points {
				pa, _ := kernel.NewGeoPoint(a[0], a[1])
				pb, _ := kernel.NewGeoPoint(b[0], b[1])

				ab, err := pa.DistanceKm(pb)
				require.NoError(t, err)
				ba, err := pb.DistanceKm(pa)
				require.NoError(t, err)

				assert.InDelta(t, ab, ba, 0.01)
			}
		}
	})

	t.Run("zero value operand fails", func(t *testing.T) {
		var zero kernel.GeoPoint

		_, err := store.DistanceKm(zero)

		require.ErrorIs(t, err, kernel.ErrGeoPointIsNotConstructed)
	})
}

func TestGeoPoint_IsEqual(t *testing.T) {
	a, _ := kernel.NewGeoPoint(-7.98, 112.63)
	b, _ := kernel.NewGeoPoint(-7.98, 112.63)
	c, _ := kernel.NewGeoPoint(-7.97, 112.63)

	eq, err := a.IsEqual(b)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = a.IsEqual(c)
	require.NoError(t, err)
	assert.False(t, eq)
}
