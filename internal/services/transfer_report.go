package services

import (
	"fmt"
	"strings"
	"time"

	"imeitrack/internal/models"

	"github.com/google/uuid"
)

// ReportInput is everything the transfer report depends on. Rendering is a
// pure function of these fields: the same input always yields the same text,
// and the report is recomputed from scratch on every state change so it can
// never drift from the transfer's actual state.
type ReportInput struct {
	Folio                   string
	TargetLocationName      string
	InitiatedBy             string
	State                   models.TransferState
	Units                   []models.UnitSnapshot
	OriginNames             map[uuid.UUID]string
	AdminConfirmation       *models.Confirmation
	DestinationConfirmation *models.Confirmation
	Cancellation            *models.Confirmation
	GeneratedAt             time.Time
}

const reportTimeLayout = "2006-01-02 15:04:05 MST"

// RenderTransferReport renders the human-readable reconciliation report for a
// transfer. The generated-at stamp is cosmetic; all state-bearing content
// comes from the input fields.
func RenderTransferReport(in ReportInput) string {
	var b strings.Builder
	rule := strings.Repeat("=", 52)

	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("  STOCK TRANSFER %s\n", in.Folio))
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("Destination : %s\n", in.TargetLocationName))
	b.WriteString(fmt.Sprintf("Initiated by: %s\n", in.InitiatedBy))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Units (%d):\n", len(in.Units)))
	for i, unit := range in.Units {
		origin := in.OriginNames[unit.OriginalLocationID]
		if origin == "" {
			origin = unit.OriginalLocationID.String()
		}
		b.WriteString(fmt.Sprintf("  %2d. %-17s %s (from %s)\n", i+1, unit.IMEI, unit.ProductName, origin))
	}
	b.WriteString("\n")

	switch in.State {
	case models.TransferPendingAdmin:
		b.WriteString("Status: PENDING ADMIN CONFIRMATION\n")
	case models.TransferPendingDestination:
		b.WriteString("Status: PENDING DESTINATION CONFIRMATION\n")
	case models.TransferCompleted:
		b.WriteString("Status: COMPLETED\n")
	case models.TransferCancelled:
		if in.Cancellation != nil {
			b.WriteString(fmt.Sprintf("Status: CANCELLED (by %s)\n", in.Cancellation.By))
		} else {
			b.WriteString("Status: CANCELLED\n")
		}
	}

	if in.AdminConfirmation != nil {
		b.WriteString(fmt.Sprintf("Confirmed by admin: %s at %s\n", in.AdminConfirmation.By, in.AdminConfirmation.At.UTC().Format(reportTimeLayout)))
	}
	if in.DestinationConfirmation != nil {
		b.WriteString(fmt.Sprintf("Received at destination by: %s at %s\n", in.DestinationConfirmation.By, in.DestinationConfirmation.At.UTC().Format(reportTimeLayout)))
	}
	if in.Cancellation != nil {
		b.WriteString(fmt.Sprintf("Cancelled by: %s at %s\n", in.Cancellation.By, in.Cancellation.At.UTC().Format(reportTimeLayout)))
		b.WriteString("All units restored to their original locations.\n")
	}

	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("Generated at: %s\n", in.GeneratedAt.UTC().Format(reportTimeLayout)))
	return b.String()
}
