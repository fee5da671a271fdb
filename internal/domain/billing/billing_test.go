package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRecomputePaymentStatus(t *testing.T) {
	cases := []struct {
		paid, cost string
		want       PaymentStatus
	}{
		{"0", "5000", PaymentUnpaid},
		{"0", "0", PaymentUnpaid},
		{"4999.99", "5000", PaymentPartiallyPaid},
		{"5000", "5000", PaymentPaid},
		{"6000", "5000", PaymentPaid},
		{"10", "0", PaymentPaid},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RecomputePaymentStatus(d(tc.paid), d(tc.cost)), "%s/%s", tc.paid, tc.cost)
	}
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{
		"cash":          MethodCash,
		"Cash":          MethodCash,
		" CARD ":        MethodCard,
		"Kaspi QR":      MethodKaspiQR,
		"kaspi-qr":      MethodKaspiQR,
		"bank transfer": MethodTransfer,
	} {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMethod("bitcoin")
	assert.True(t, httperr.IsBusiness(err, "invalid_payment_method"))
}

func sum(allocs []Allocation, method Method) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		if a.Method == method {
			total = total.Add(a.Amount)
		}
	}
	return total
}

func TestAllocate_ProportionalWithRemainderOnLastLine(t *testing.T) {
	lines := []LineShare{
		{LineID: 3, Price: d("1000")},
		{LineID: 1, Price: d("1000")},
		{LineID: 2, Price: d("1000")},
	}

	allocs, err := Allocate(lines, []Tender{{Method: MethodCash, Amount: d("100")}})
	require.NoError(t, err)
	require.Len(t, allocs, 3)

	assert.Equal(t, uint(1), allocs[0].LineID)
	assert.True(t, d("33.33").Equal(allocs[0].Amount))
	assert.True(t, d("33.33").Equal(allocs[1].Amount))
	assert.Equal(t, uint(3), allocs[2].LineID)
	assert.True(t, d("33.34").Equal(allocs[2].Amount))
	assert.True(t, d("100").Equal(sum(allocs, MethodCash)))
}

func TestAllocate_RemainderSkipsZeroPricedTail(t *testing.T) {
	lines := []LineShare{
		{LineID: 1, Price: d("700")},
		{LineID: 2, Price: d("300")},
		{LineID: 3, Price: d("0")},
	}

	allocs, err := Allocate(lines, []Tender{{Method: MethodCard, Amount: d("99.99")}})
	require.NoError(t, err)
	require.Len(t, allocs, 2)

	assert.True(t, d("69.99").Equal(allocs[0].Amount))
	assert.Equal(t, uint(2), allocs[1].LineID)
	assert.True(t, d("30").Equal(allocs[1].Amount))
}

func TestAllocate_MergesTendersPerMethod(t *testing.T) {
	lines := []LineShare{{LineID: 1, Price: d("500")}, {LineID: 2, Price: d("1500")}}
	tenders := []Tender{
		{Method: MethodCash, Amount: d("1000")},
		{Method: MethodKaspiQR, Amount: d("500")},
		{Method: MethodCash, Amount: d("500")},
	}

	allocs, err := Allocate(lines, tenders)
	require.NoError(t, err)
	require.Len(t, allocs, 4)

	assert.True(t, d("1500").Equal(sum(allocs, MethodCash)))
	assert.True(t, d("500").Equal(sum(allocs, MethodKaspiQR)))
	assert.True(t, d("2000").Equal(TenderTotal(tenders)))
}

func TestAllocate_ZeroTotalGoesToLastLine(t *testing.T) {
	lines := []LineShare{{LineID: 1, Price: d("0")}, {LineID: 2, Price: d("0")}}

	allocs, err := Allocate(lines, []Tender{{Method: MethodCash, Amount: d("10")}})
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, uint(2), allocs[0].LineID)
}

func TestAllocate_NoLines(t *testing.T) {
	_, err := Allocate(nil, []Tender{{Method: MethodCash, Amount: d("10")}})
	assert.True(t, httperr.IsBusiness(err, "no_service_lines"))
}
