package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReservationApproved(t *testing.T) {
	data := map[string]any{
		"reservation_id": 12,
		"room_name":      "Deluxe <sea view>",
		"room_number":    "101",
		"check_in":       "2026-03-10",
		"check_out":      "2026-03-12",
		"price":          "100.00",
	}
	msg, err := Render(ReservationApprovedTemplate, "Alice", data)
	require.NoError(t, err)

	assert.Equal(t, "Your reservation #12 is approved", msg.Subject)
	assert.Contains(t, msg.PlainBody, "Hi Alice,")
	assert.Contains(t, msg.PlainBody, "Room: Deluxe <sea view> (101)")
	assert.Contains(t, msg.PlainBody, "Total: 100.00")
	assert.True(t, strings.Contains(msg.HTMLBody, "Deluxe &lt;sea view&gt;"), "html body is escaped")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("missing.tmpl", "Alice", nil)
	assert.Error(t, err)
}
