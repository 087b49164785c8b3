package payment

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForTag(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{tag: "card", want: "Card"},
		{tag: "CARD", want: "Card"},
		{tag: "  Card\n", want: "Card"},
		{tag: "cash", want: "Cash"},
		{tag: "Cash", want: "Cash"},
		{tag: "", want: "Cash"},
		{tag: "bitcoin", want: "Cash"},
		{tag: "cards", want: "Cash"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ForTag(tt.tag, &bytes.Buffer{}).Name())
		})
	}
}

func TestMethod_Pay(t *testing.T) {
	tests := []struct {
		name    string
		method  func(*bytes.Buffer) Method
		wantOut string
		wantBy  string
	}{
		{
			name:    "card",
			method:  func(b *bytes.Buffer) Method { return NewCard(b) },
			wantOut: "Paid 161700.00 using Card\n",
			wantBy:  "Card",
		},
		{
			name:    "cash",
			method:  func(b *bytes.Buffer) Method { return NewCash(b) },
			wantOut: "Paid 161700.00 using Cash\n",
			wantBy:  "Cash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			amount := decimal.NewFromInt(161700)

			receipt, err := tt.method(&out).Pay(context.Background(), amount)

			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantBy, receipt.Method)
			assert.True(t, amount.Equal(receipt.Amount))
			assert.False(t, receipt.PaidAt.IsZero())
			_, err = uuid.Parse(receipt.ID)
			require.NoError(t, err)
		})
	}
}

func TestMethod_PayRejectsNegative(t *testing.T) {
	var out bytes.Buffer

	_, err := NewCash(&out).Pay(context.Background(), decimal.NewFromInt(-1))

	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestMethod_PayCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCard(&bytes.Buffer{}).Pay(ctx, decimal.NewFromInt(1))
	require.ErrorIs(t, err, context.Canceled)
}
