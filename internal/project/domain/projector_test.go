package domain

import (
	"testing"

	quotedomain "github.com/facturio/facturio/internal/quote/domain"
	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	cases := []struct {
		name        string
		current     ProjectStatus
		statuses    []quotedomain.QuoteStatus
		want        ProjectStatus
		wantChanged bool
	}{
		{
			name:        "accepted quote promotes",
			current:     ProjectStatusPending,
			statuses:    []quotedomain.QuoteStatus{quotedomain.QuoteStatusDraft, quotedomain.QuoteStatusAccepted},
			want:        ProjectStatusQuoteAccepted,
			wantChanged: true,
		},
		{
			name:        "sent quote promotes",
			current:     ProjectStatusPending,
			statuses:    []quotedomain.QuoteStatus{quotedomain.QuoteStatusSent},
			want:        ProjectStatusQuoteSent,
			wantChanged: true,
		},
		{
			name:        "accepted wins over sent",
			current:     ProjectStatusPending,
			statuses:    []quotedomain.QuoteStatus{quotedomain.QuoteStatusSent, quotedomain.QuoteStatusAccepted},
			want:        ProjectStatusQuoteAccepted,
			wantChanged: true,
		},
		{
			name:        "draft quotes leave status alone",
			current:     ProjectStatusPending,
			statuses:    []quotedomain.QuoteStatus{quotedomain.QuoteStatusDraft, quotedomain.QuoteStatusRefused},
			want:        ProjectStatusPending,
			wantChanged: false,
		},
		{
			name:        "no quotes never reverts",
			current:     ProjectStatusQuoteAccepted,
			statuses:    nil,
			want:        ProjectStatusQuoteAccepted,
			wantChanged: false,
		},
		{
			name:        "refused quotes never revert",
			current:     ProjectStatusQuoteSent,
			statuses:    []quotedomain.QuoteStatus{quotedomain.QuoteStatusRefused, quotedomain.QuoteStatusExpired},
			want:        ProjectStatusQuoteSent,
			wantChanged: false,
		},
		{
			name:        "already accepted stays unchanged",
			current:     ProjectStatusQuoteAccepted,
			statuses:    []quotedomain.QuoteStatus{quotedomain.QuoteStatusAccepted},
			want:        ProjectStatusQuoteAccepted,
			wantChanged: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quotes := make([]quotedomain.Quote, 0, len(tc.statuses))
			for _, status := range tc.statuses {
				quotes = append(quotes, quotedomain.Quote{Status: status})
			}

			got, changed := Derive(tc.current, quotes)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantChanged, changed)
		})
	}
}
