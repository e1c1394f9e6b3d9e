package core

import (
	"errors"
	"testing"
)

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		name string
		raw  int64
		cur  Currency
		rate float64
		out  int64
		err  error
	}{
		{"base currency passes through", 250, EUR, 0, 250, nil},
		{"base currency ignores rate", 250, EUR, 310, 250, nil},
		{"pkr at 310", 100000, PKR, 310, 323, nil}, // 1000 PKR -> 3.23 EUR
		{"usd under one", 1000, USD, 0.85, 1176, nil},
		{"half-up on conversion", 100, PKR, 200, 1, nil}, // 0.5 cents rounds up
		{"missing rate", 100, PKR, 0, 0, ErrInvalidRate},
		{"negative rate", 100, PKR, -1, 0, ErrInvalidRate},
		{"zero amount", 0, EUR, 0, 0, ErrInvalidAmount},
		{"rounds to nothing", 1, PKR, 1000, 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeAmount(Money{Cents: tc.raw}, tc.cur, tc.rate)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Cents != tc.out {
				t.Fatalf("expected %d cents, got %d", tc.out, got.Cents)
			}
		})
	}
}

func TestNormalizeAmountIdempotentOnBase(t *testing.T) {
	m := Money{Cents: 777}
	for i := 0; i < 3; i++ {
		got, err := NormalizeAmount(m, BaseCurrency, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != m {
			t.Fatalf("normalization changed a base amount: %v -> %v", m, got)
		}
		m = got
	}
}
