package invoice

import (
	"testing"

	"invoicer/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func f(v float64) *float64 { return &v }

func TestComputeTotalsBasic(t *testing.T) {
	totals, err := ComputeTotals([]ItemInput{
		{ProductName: "Rug A", Quantity: d("2"), Price: d("50")},
		{ProductName: "Rug B", Quantity: d("1"), Price: d("100")},
	}, DiscountInput{}, d("10"))
	require.NoError(t, err)

	assert.Equal(t, "200", totals.Subtotal.String())
	assert.Equal(t, "0", totals.DiscountAmount.String())
	assert.Equal(t, "20", totals.Tax.String())
	assert.Equal(t, "220", totals.Total.String())
	require.Len(t, totals.Items, 2)
	assert.Equal(t, "100", totals.Items[0].Total.String())
	assert.Equal(t, 0, totals.Items[0].Position)
	assert.Equal(t, 1, totals.Items[1].Position)
}

func TestComputeTotalsEmptyItems(t *testing.T) {
	_, err := ComputeTotals(nil, DiscountInput{}, decimal.Zero)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestComputeTotalsAreaFromDimensions(t *testing.T) {
	// 2 x 3 at price 10 per unit area: total 60, quantity defaults to 1.
	totals, err := ComputeTotals([]ItemInput{
		{ProductName: "Carpet", Price: d("10"), Length: f(2), Width: f(3)},
	}, DiscountInput{}, decimal.Zero)
	require.NoError(t, err)

	item := totals.Items[0]
	require.NotNil(t, item.Area)
	assert.Equal(t, 6.0, *item.Area)
	assert.Equal(t, "60", item.Total.String())
	assert.Equal(t, "1", item.Quantity.String())
}

func TestComputeTotalsExplicitAreaWins(t *testing.T) {
	totals, err := ComputeTotals([]ItemInput{
		{ProductName: "Carpet", Price: d("10"), Length: f(2), Width: f(3), Area: f(4)},
	}, DiscountInput{}, decimal.Zero)
	require.NoError(t, err)

	require.NotNil(t, totals.Items[0].Area)
	assert.Equal(t, 4.0, *totals.Items[0].Area)
	assert.Equal(t, "40", totals.Items[0].Total.String())
}

func TestComputeTotalsNonPositiveExplicitAreaDisablesAreaPricing(t *testing.T) {
	// A present-but-zero area means "not area priced" even when dimensions
	// would produce one.
	totals, err := ComputeTotals([]ItemInput{
		{ProductName: "Carpet", Quantity: d("2"), Price: d("10"), Length: f(2), Width: f(3), Area: f(0)},
	}, DiscountInput{}, decimal.Zero)
	require.NoError(t, err)

	assert.Nil(t, totals.Items[0].Area)
	assert.Equal(t, "20", totals.Items[0].Total.String())
}

func TestComputeTotalsNegativeClamping(t *testing.T) {
	totals, err := ComputeTotals([]ItemInput{
		{ProductName: "Weird", Quantity: d("-5"), Price: d("-10")},
	}, DiscountInput{}, d("-7"))
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotalsDiscountAmount(t *testing.T) {
	totals, err := ComputeTotals([]ItemInput{
		{ProductName: "Rug", Quantity: d("1"), Price: d("200")},
	}, DiscountInput{Type: model.DiscountAmount, Value: d("50")}, d("10"))
	require.NoError(t, err)

	assert.Equal(t, "50", totals.DiscountAmount.String())
	assert.Equal(t, "15", totals.Tax.String())
	assert.Equal(t, "165", totals.Total.String())
}

func TestComputeTotalsDiscountPercent(t *testing.T) {
	totals, err := ComputeTotals([]ItemInput{
		{ProductName: "Rug", Quantity: d("1"), Price: d("200")},
	}, DiscountInput{Type: model.DiscountPercent, Value: d("25")}, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "50", totals.DiscountAmount.String())
	assert.Equal(t, "150", totals.Total.String())
}

func TestComputeTotalsDiscountClampedToSubtotal(t *testing.T) {
	totals, err := ComputeTotals([]ItemInput{
		{ProductName: "Rug", Quantity: d("1"), Price: d("100")},
	}, DiscountInput{Type: model.DiscountAmount, Value: d("500")}, d("20"))
	require.NoError(t, err)

	assert.Equal(t, "100", totals.DiscountAmount.String())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotalsNegativeDiscountClampedToZero(t *testing.T) {
	totals, err := ComputeTotals([]ItemInput{
		{ProductName: "Rug", Quantity: d("1"), Price: d("100")},
	}, DiscountInput{Type: model.DiscountAmount, Value: d("-30")}, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, totals.DiscountAmount.IsZero())
	assert.Equal(t, "100", totals.Total.String())
}

func TestComputeTotalsRounding(t *testing.T) {
	totals, err := ComputeTotals([]ItemInput{
		{ProductName: "Rug", Quantity: d("3"), Price: d("33.335")},
	}, DiscountInput{}, d("7.5"))
	require.NoError(t, err)

	// 3 * 33.335 = 100.005 -> 100.01 half-up
	assert.Equal(t, "100.01", totals.Subtotal.String())
	assert.Equal(t, "7.5", totals.Tax.String())
	assert.Equal(t, "107.51", totals.Total.String())
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []ItemInput{
		{ProductName: "Rug", Quantity: d("2"), Price: d("49.99"), Length: f(1.5), Width: f(2.5)},
	}
	discount := DiscountInput{Type: model.DiscountPercent, Value: d("12.5")}

	first, err := ComputeTotals(items, discount, d("9"))
	require.NoError(t, err)
	second, err := ComputeTotals(items, discount, d("9"))
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.DiscountAmount.Equal(second.DiscountAmount))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Total.Equal(second.Total))
}
