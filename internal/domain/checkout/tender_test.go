package checkout

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTenderMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    TenderMethod
		wantErr bool
	}{
		{"cash", TenderCash, false},
		{"CARD", TenderCard, false},
		{" Mobile ", TenderMobile, false},
		{"voucher", TenderVoucher, false},
		{"crypto", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTenderMethod(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownTenderMethod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTenderMethod_BackendCode(t *testing.T) {
	code, err := TenderCard.BackendCode()
	require.NoError(t, err)
	assert.Equal(t, "CARD", code)

	_, err = TenderMethod("cheque").BackendCode()
	assert.ErrorIs(t, err, ErrUnknownTenderMethod)
}

func TestReconciler_CashWithChange(t *testing.T) {
	r := NewReconciler(dec("22.00"))

	_, err := r.AddTender(TenderCash, dec("20.00"))
	require.NoError(t, err)
	assert.False(t, r.CanFinalize())
	assertMoney(t, "2.00", r.Remaining())

	_, err = r.AddTender(TenderCash, dec("5.00"))
	require.NoError(t, err)

	assertMoney(t, "25.00", r.Paid())
	assertMoney(t, "0", r.Remaining())
	assertMoney(t, "3.00", r.Change())
	assert.True(t, r.CanFinalize())
}

func TestReconciler_CardCannotExceedRemaining(t *testing.T) {
	r := NewReconciler(dec("22.00"))

	_, err := r.AddTender(TenderCard, dec("25.00"))
	assert.ErrorIs(t, err, ErrTenderExceedsRemaining)
	assert.Empty(t, r.Tenders())

	_, err = r.AddTender(TenderCard, dec("22.00"))
	require.NoError(t, err)
	assert.True(t, r.CanFinalize())
	assertMoney(t, "0", r.Change())
}

func TestReconciler_NonCashAfterPartialCash(t *testing.T) {
	r := NewReconciler(dec("22.00"))
	_, err := r.AddTender(TenderCash, dec("10"))
	require.NoError(t, err)

	_, err = r.AddTender(TenderMobile, dec("12.01"))
	assert.ErrorIs(t, err, ErrTenderExceedsRemaining)

	_, err = r.AddTender(TenderVoucher, dec("12"))
	require.NoError(t, err)
	assert.True(t, r.CanFinalize())
}

func TestReconciler_RejectsInvalidTenders(t *testing.T) {
	r := NewReconciler(dec("10"))

	_, err := r.AddTender(TenderCash, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidTenderAmount)
	_, err = r.AddTender(TenderCash, dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidTenderAmount)
	_, err = r.AddTender(TenderMethod("iou"), dec("1"))
	assert.ErrorIs(t, err, ErrUnknownTenderMethod)
}

func TestReconciler_FinalizeGate(t *testing.T) {
	t.Run("no tenders", func(t *testing.T) {
		assert.False(t, NewReconciler(dec("10")).CanFinalize())
	})

	t.Run("no tenders on zero total", func(t *testing.T) {
		assert.False(t, NewReconciler(decimal.Zero).CanFinalize())
	})

	t.Run("within one minor unit", func(t *testing.T) {
		r := NewReconciler(dec("10.005"))
		_, err := r.AddTender(TenderCard, dec("10.00"))
		require.NoError(t, err)
		assert.True(t, r.CanFinalize())
	})

	t.Run("more than one minor unit short", func(t *testing.T) {
		r := NewReconciler(dec("10.02"))
		_, err := r.AddTender(TenderCard, dec("10.00"))
		require.NoError(t, err)
		assert.False(t, r.CanFinalize())
	})
}

func TestReconciler_SubCentTotalSettlesInMinorUnits(t *testing.T) {
	// 9.55 at 5% tax is 10.0275 before rounding
	cart := NewCart()
	_, err := cart.AddOrIncrement(newTestProduct("Notebook", 9.55, 5), dec("1"))
	require.NoError(t, err)
	total := cart.Totals().Total
	assertMoney(t, "10.0275", total)

	t.Run("card for the displayed total", func(t *testing.T) {
		r := NewReconciler(total)
		assertMoney(t, "10.03", r.Total())

		_, err := r.AddTender(TenderCard, dec("10.03"))
		require.NoError(t, err)
		assert.True(t, r.CanFinalize())
		assert.True(t, r.Remaining().IsZero())
		assert.True(t, r.Change().IsZero())
	})

	t.Run("card above the displayed total", func(t *testing.T) {
		r := NewReconciler(total)
		_, err := r.AddTender(TenderCard, dec("10.04"))
		assert.ErrorIs(t, err, ErrTenderExceedsRemaining)
	})

	t.Run("cash change is whole cents", func(t *testing.T) {
		r := NewReconciler(total)
		_, err := r.AddTender(TenderCash, dec("20"))
		require.NoError(t, err)
		assertMoney(t, "9.97", r.Change())
	})
}

func TestReconciler_RemoveTender(t *testing.T) {
	r := NewReconciler(dec("30"))
	_, err := r.AddTender(TenderCash, dec("10"))
	require.NoError(t, err)
	_, err = r.AddTender(TenderCard, dec("5"))
	require.NoError(t, err)

	require.NoError(t, r.RemoveTender(0))
	tenders := r.Tenders()
	require.Len(t, tenders, 1)
	assert.Equal(t, TenderCard, tenders[0].Method)
	assertMoney(t, "25", r.Remaining())

	assert.ErrorIs(t, r.RemoveTender(1), ErrTenderNotFound)
	assert.ErrorIs(t, r.RemoveTender(-1), ErrTenderNotFound)
}

func TestReconciler_ChangeAndRemainingNeverBothPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	methods := []TenderMethod{TenderCash, TenderCard, TenderMobile, TenderVoucher}

	for i := 0; i < 200; i++ {
		total := decimal.NewFromInt(rng.Int63n(10000)).Div(decimal.NewFromInt(100))
		r := NewReconciler(total)
		for j := 0; j < 5; j++ {
			amount := decimal.NewFromInt(rng.Int63n(5000) + 1).Div(decimal.NewFromInt(100))
			_, _ = r.AddTender(methods[rng.Intn(len(methods))], amount)

			assert.True(t, r.Change().Mul(r.Remaining()).IsZero())
			assert.False(t, r.Change().IsNegative())
			assert.False(t, r.Remaining().IsNegative())
			assert.True(t, r.Paid().LessThanOrEqual(total) || r.Change().IsPositive())
		}
	}
}
