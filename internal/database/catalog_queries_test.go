package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllCars(t *testing.T) {
	db := seededTestDB(t)

	cars, err := db.GetAllCars(context.Background())
	require.NoError(t, err)
	require.Len(t, cars, 2)

	// Ordered by rego.
	assert.Equal(t, "ABC123", cars[0].Rego)
	assert.Equal(t, "carlton-gratton", cars[0].ParkedAt)
	assert.Equal(t, "XYZ789", cars[1].Rego)
}

func TestGetCarDetails(t *testing.T) {
	db := seededTestDB(t)

	details, err := db.GetCarDetails(context.Background(), "ABC123")
	require.NoError(t, err)

	assert.Equal(t, "Beryl", details.Name)
	assert.Equal(t, "Toyota", details.Make)
	assert.Equal(t, "carlton-gratton", details.BayName)
	assert.Equal(t, 92, details.WalkScore)
	assert.Equal(t, "https://maps.example.org/bays/carlton-gratton", details.MapURL)
}

func TestGetCarDetailsNotFound(t *testing.T) {
	db := seededTestDB(t)

	_, err := db.GetCarDetails(context.Background(), "NOPE00")
	assert.ErrorIs(t, err, ErrCarNotFound)
}

func TestGetCarsInBay(t *testing.T) {
	db := seededTestDB(t)
	ctx := context.Background()

	cars, err := db.GetCarsInBay(ctx, "carlton-gratton")
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "ABC123", cars[0].Rego)
	assert.Equal(t, "Beryl", cars[0].Name)

	empty, err := db.GetCarsInBay(ctx, "no-such-bay")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetAllBays(t *testing.T) {
	db := seededTestDB(t)

	bays, err := db.GetAllBays(context.Background())
	require.NoError(t, err)
	require.Len(t, bays, 2)

	assert.Equal(t, "carlton-gratton", bays[0].Name)
	assert.Equal(t, 1, bays[0].NumCars)
	assert.Equal(t, "fitzroy-rose", bays[1].Name)
	assert.Equal(t, 1, bays[1].NumCars)
}

func TestGetBay(t *testing.T) {
	db := seededTestDB(t)

	bay, err := db.GetBay(context.Background(), "fitzroy-rose")
	require.NoError(t, err)
	assert.Equal(t, "45 Rose St, Fitzroy", bay.Address)
	assert.Equal(t, 95, bay.WalkScore)

	_, err = db.GetBay(context.Background(), "no-such-bay")
	assert.ErrorIs(t, err, ErrBayNotFound)
}

func TestSearchBays(t *testing.T) {
	db := seededTestDB(t)
	ctx := context.Background()

	// Case-insensitive match on name.
	bays, err := db.SearchBays(ctx, "CARLTON")
	require.NoError(t, err)
	require.Len(t, bays, 1)
	assert.Equal(t, "carlton-gratton", bays[0].Name)

	// Match on address.
	bays, err = db.SearchBays(ctx, "rose st")
	require.NoError(t, err)
	require.Len(t, bays, 1)
	assert.Equal(t, "fitzroy-rose", bays[0].Name)

	// No match returns an empty slice, not nil.
	bays, err = db.SearchBays(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, bays)
	assert.Empty(t, bays)
}

func TestGetMemberByEmail(t *testing.T) {
	db := seededTestDB(t)

	member, err := db.GetMemberByEmail(context.Background(), "alice@example.org")
	require.NoError(t, err)
	assert.Equal(t, "alice", member.Nickname)
	assert.Equal(t, "carlton-gratton", member.HomeBay)
	assert.Equal(t, "occasional", member.Plan)
	assert.False(t, member.Since.IsZero())

	_, err = db.GetMemberByEmail(context.Background(), "nobody@example.org")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberNoByEmail(t *testing.T) {
	db := seededTestDB(t)

	no, err := db.MemberNoByEmail(context.Background(), "alice@example.org")
	require.NoError(t, err)
	assert.NotZero(t, no)

	_, err = db.MemberNoByEmail(context.Background(), "nobody@example.org")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestUpdateHomeBay(t *testing.T) {
	db := seededTestDB(t)
	ctx := context.Background()

	name, err := db.UpdateHomeBay(ctx, "alice@example.org", "fitzroy-rose")
	require.NoError(t, err)
	assert.Equal(t, "fitzroy-rose", name)

	member, err := db.GetMemberByEmail(ctx, "alice@example.org")
	require.NoError(t, err)
	assert.Equal(t, "fitzroy-rose", member.HomeBay)
}

func TestUpdateHomeBayUnknownBay(t *testing.T) {
	db := seededTestDB(t)

	_, err := db.UpdateHomeBay(context.Background(), "alice@example.org", "no-such-bay")
	assert.ErrorIs(t, err, ErrBayNotFound)
}

func TestUpdateHomeBayUnknownMember(t *testing.T) {
	db := seededTestDB(t)

	_, err := db.UpdateHomeBay(context.Background(), "nobody@example.org", "fitzroy-rose")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
