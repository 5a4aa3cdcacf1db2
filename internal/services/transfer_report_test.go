package services

import (
	"testing"
	"time"

	"imeitrack/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func reportInput() ReportInput {
	originID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	return ReportInput{
		Folio:              "TR-00042",
		TargetLocationName: "Downtown Store",
		InitiatedBy:        "Alice Admin",
		State:              models.TransferPendingAdmin,
		Units: []models.UnitSnapshot{
			{IMEI: "356938035643809", ProductName: "Apple iPhone 15", OriginalLocationID: originID},
			{IMEI: "490154203237518", ProductName: "Samsung Galaxy S24", OriginalLocationID: originID},
		},
		OriginNames: map[uuid.UUID]string{originID: "Central Warehouse"},
		GeneratedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestRenderTransferReportIsDeterministic(t *testing.T) {
	in := reportInput()
	first := RenderTransferReport(in)
	second := RenderTransferReport(in)
	assert.Equal(t, first, second)
}

func TestRenderTransferReportContents(t *testing.T) {
	out := RenderTransferReport(reportInput())

	assert.Contains(t, out, "STOCK TRANSFER TR-00042")
	assert.Contains(t, out, "Destination : Downtown Store")
	assert.Contains(t, out, "Initiated by: Alice Admin")
	assert.Contains(t, out, "Units (2):")
	assert.Contains(t, out, "356938035643809")
	assert.Contains(t, out, "Apple iPhone 15 (from Central Warehouse)")
	assert.Contains(t, out, "Status: PENDING ADMIN CONFIRMATION")
	assert.NotContains(t, out, "Confirmed by admin")
}

func TestRenderTransferReportConfirmations(t *testing.T) {
	in := reportInput()
	in.State = models.TransferCompleted
	in.AdminConfirmation = &models.Confirmation{By: "Alice Admin", At: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}
	in.DestinationConfirmation = &models.Confirmation{By: "Bob Agent", At: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)}

	out := RenderTransferReport(in)
	assert.Contains(t, out, "Status: COMPLETED")
	assert.Contains(t, out, "Confirmed by admin: Alice Admin at 2025-03-14 10:00:00 UTC")
	assert.Contains(t, out, "Received at destination by: Bob Agent at 2025-03-14 12:00:00 UTC")
}

func TestRenderTransferReportCancelled(t *testing.T) {
	in := reportInput()
	in.State = models.TransferCancelled
	in.Cancellation = &models.Confirmation{By: "Alice Admin", At: time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)}

	out := RenderTransferReport(in)
	assert.Contains(t, out, "Status: CANCELLED (by Alice Admin)")
	assert.Contains(t, out, "All units restored to their original locations.")
}

func TestRenderTransferReportUnknownOriginFallsBackToID(t *testing.T) {
	in := reportInput()
	in.OriginNames = nil

	out := RenderTransferReport(in)
	assert.Contains(t, out, "11111111-1111-1111-1111-111111111111")
}
