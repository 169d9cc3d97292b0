package domain

import (
	quotedomain "github.com/facturio/facturio/internal/quote/domain"
)

// Derive computes the status a project should carry given its current quote
// set. Any accepted quote wins over any sent quote; with neither present the
// prior status is left untouched. The projection never reverts a project on
// its own: deleting the triggering quote later leaves the status where it is.
func Derive(current ProjectStatus, quotes []quotedomain.Quote) (ProjectStatus, bool) {
	hasSent := false
	for _, q := range quotes {
		switch q.Status {
		case quotedomain.QuoteStatusAccepted:
			return ProjectStatusQuoteAccepted, current != ProjectStatusQuoteAccepted
		case quotedomain.QuoteStatusSent:
			hasSent = true
		}
	}
	if hasSent {
		return ProjectStatusQuoteSent, current != ProjectStatusQuoteSent
	}
	return current, false
}
