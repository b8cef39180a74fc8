package services

import (
	"context"
	"testing"
	"time"

	"trackmystartup/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartupService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	subs := []string{"Acme India", " ", "parent company"}
	intl := []string{"Acme GmbH", "acme india"}
	st, err := f.startups.Create(ctx, StartupInput{
		Name:                    strPtr("Acme"),
		Currency:                strPtr("usd"),
		Subsidiaries:            &subs,
		InternationalOperations: &intl,
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", st.Currency)
	assert.Equal(t, []string{"Acme India", "parent company"}, st.Subsidiaries)

	t.Run("Create validates", func(t *testing.T) {
		_, err := f.startups.Create(ctx, StartupInput{})
		requireValidation(t, err, "name")
		_, err = f.startups.Create(ctx, StartupInput{Name: strPtr("X"), Currency: strPtr("ZZZ")})
		requireValidation(t, err, "currency")
	})

	t.Run("Entities come from the profile then the ledger", func(t *testing.T) {
		_, err := f.ledger.AddRecord(ctx, st.ID, LedgerInput{
			RecordType:  models.RecordTypeRevenue,
			Date:        day(2024, time.May, 1),
			Entity:      "Legacy Branch",
			Vertical:    "Services",
			Description: "old import",
			Amount:      dec("1"),
		})
		require.NoError(t, err)

		entities, err := f.startups.Entities(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{models.ParentEntity, "Acme India", "Acme GmbH", "Legacy Branch"}, entities)
	})

	t.Run("Years fall back to the earliest record", func(t *testing.T) {
		years, err := f.startups.Years(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"all", "2026", "2025", "2024"}, years)
	})

	t.Run("Years start at registration", func(t *testing.T) {
		reg := day(2025, time.July, 1)
		_, err := f.startups.Update(ctx, st.ID, StartupInput{RegisteredAt: &reg})
		require.NoError(t, err)
		years, err := f.startups.Years(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"all", "2026", "2025"}, years)
	})

	t.Run("Update keeps unspecified fields", func(t *testing.T) {
		updated, err := f.startups.Update(ctx, st.ID, StartupInput{Name: strPtr("Acme Labs")})
		require.NoError(t, err)
		assert.Equal(t, "Acme Labs", updated.Name)
		assert.Equal(t, []string{"Acme GmbH", "acme india"}, updated.InternationalOperations)
	})

	t.Run("Unknown startup", func(t *testing.T) {
		_, err := f.startups.Get(ctx, st.ID+100)
		requireNotFound(t, err)
	})
}

func TestFundraisingService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st, err := f.startups.Create(ctx, StartupInput{Name: strPtr("Acme")})
	require.NoError(t, err)

	t.Run("Insert needs a round type", func(t *testing.T) {
		_, _, err := f.fundraising.Upsert(ctx, st.ID, FundraisingInput{TargetValue: decPtr("1000")})
		requireValidation(t, err, "round_type")
		rounds, err := f.fundraising.List(ctx, st.ID, false)
		require.NoError(t, err)
		assert.Empty(t, rounds)
	})

	t.Run("Range checks", func(t *testing.T) {
		_, _, err := f.fundraising.Upsert(ctx, st.ID, FundraisingInput{RoundType: strPtr("Seed"), EquityOffered: decPtr("120")})
		requireValidation(t, err, "equity_offered")
		_, _, err = f.fundraising.Upsert(ctx, st.ID, FundraisingInput{RoundType: strPtr("Seed"), TargetValue: decPtr("-1")})
		requireValidation(t, err, "target_value")
	})

	t.Run("Insert then update the same round", func(t *testing.T) {
		round, created, err := f.fundraising.Upsert(ctx, st.ID, FundraisingInput{RoundType: strPtr("Seed"), TargetValue: decPtr("500000"), Active: boolPtr(true)})
		require.NoError(t, err)
		assert.True(t, created)

		again, created, err := f.fundraising.Upsert(ctx, st.ID, FundraisingInput{Stage: strPtr("MVP")})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, round.ID, again.ID)
		assert.Equal(t, "Seed", again.RoundType)
		assert.Equal(t, "MVP", again.Stage)

		active, err := f.fundraising.Active(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, round.ID, active.ID)
	})

	t.Run("No active round", func(t *testing.T) {
		other, err := f.startups.Create(ctx, StartupInput{Name: strPtr("Other")})
		require.NoError(t, err)
		_, err = f.fundraising.Active(ctx, other.ID)
		requireNotFound(t, err)
	})
}
