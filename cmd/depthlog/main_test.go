package main

import (
	"testing"

	"github.com/vanderheijden86/depthlog/pkg/divelog"
	"github.com/vanderheijden86/depthlog/pkg/testutil"
)

func TestPickDive(t *testing.T) {
	store := divelog.NewDiveList(testutil.QuickLogbook(5))

	tests := []struct {
		name   string
		number int
		want   int // expected dive number, 0 for nil
	}{
		{"explicit number", 3, 3},
		{"zero picks newest", 0, 5},
		{"unknown number", 99, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := pickDive(store, tc.number)
			if tc.want == 0 {
				if d != nil {
					t.Fatalf("expected nil, got dive #%d", d.Number)
				}
				return
			}
			if d == nil {
				t.Fatalf("expected dive #%d, got nil", tc.want)
			}
			if d.Number != tc.want {
				t.Errorf("expected dive #%d, got #%d", tc.want, d.Number)
			}
		})
	}
}

func TestPickDiveEmptyStore(t *testing.T) {
	store := divelog.NewDiveList(nil)
	if d := pickDive(store, 0); d != nil {
		t.Errorf("empty store should yield nil, got dive #%d", d.Number)
	}
}
