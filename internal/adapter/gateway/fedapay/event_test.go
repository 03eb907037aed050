package fedapay

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	t.Run("envelope", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"name":"transaction.approved","entity":{"id":104578,"status":"approved","amount":55000,
			"custom_metadata":{"loan_id":"LN-1","user_id":"U-1","type":"loan_repayment"}}}`))
		require.NoError(t, err)
		assert.Equal(t, "transaction.approved", ev.Name)
		assert.Equal(t, ExternalID("104578"), ev.Entity.ID)
		assert.True(t, ev.Entity.Amount.Equal(decimal.NewFromInt(55000)))
		assert.Equal(t, "LN-1", ev.Entity.References().LoanID)
	})

	t.Run("metadata fallback", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"name":"transaction.declined","entity":{"id":"9","status":"declined",
			"metadata":{"plan_id":"PL-1","user_id":"U-1"}}}`))
		require.NoError(t, err)
		ref := ev.Entity.References()
		assert.Equal(t, "PL-1", ref.PlanID)
		assert.Equal(t, "U-1", ref.UserID)
		assert.Nil(t, ev.Entity.SettledAt())
	})

	t.Run("bare transaction", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"id":12,"status":"approved","paid_at":"2026-01-02 03:04:05"}`))
		require.NoError(t, err)
		assert.Equal(t, ExternalID("12"), ev.Entity.ID)
		require.NotNil(t, ev.Entity.SettledAt())
		assert.Equal(t, 2026, ev.Entity.SettledAt().Year())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{not json`))
		assert.ErrorIs(t, err, ErrMalformedEvent)
		_, err = ParseEvent([]byte(`{"name":"transaction.approved","entity":{}}`))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})
}
