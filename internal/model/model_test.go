package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Supplier ")
	assert.True(t, ok)
	assert.Equal(t, RoleSupplier, r)

	_, ok = ParseRole("system")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)

	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("Admin").Valid())
}

func TestQuoteHasWinner(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		q    Quote
		want bool
	}{
		{"open", Quote{Status: "open"}, false},
		{"awarded at", Quote{Status: "open", AwardedAt: &now}, true},
		{"award reference", Quote{AwardedBidID: strPtr("bid-1")}, true},
		{"empty award reference", Quote{AwardedBidID: strPtr("")}, false},
		{"winner id", Quote{AwardedSupplierID: strPtr("s-1")}, true},
		{"won label", Quote{Status: "Won"}, true},
		{"closed won label", Quote{Status: "closed_won"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.q.HasWinner())
		})
	}
}

func TestQuoteDisplayLabel(t *testing.T) {
	assert.Equal(t, "Bracket v2", (&Quote{ID: "abc", Title: " Bracket v2 ", FileName: "b.step"}).DisplayLabel())
	assert.Equal(t, "b.step", (&Quote{ID: "abc", FileName: "b.step"}).DisplayLabel())
	assert.Equal(t, "Quote 12345678", (&Quote{ID: "123456789abc"}).DisplayLabel())
	assert.Equal(t, "Quote q1", (&Quote{ID: "q1"}).DisplayLabel())
}
