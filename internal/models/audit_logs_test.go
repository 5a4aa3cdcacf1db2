package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDetailsRoundTrip(t *testing.T) {
	transferID := uuid.New()
	payloads := map[string]any{
		ActionItemsTransferred: &ItemsTransferredDetails{
			TransferID:       transferID,
			Folio:            "TR-00042",
			TargetLocationID: uuid.New(),
			Units: []UnitSnapshot{
				{IMEI: "356938035643809", ProductName: "Apple iPhone 15", OriginalLocationID: uuid.New()},
			},
		},
		ActionTransferConfirmed: &TransferConfirmedDetails{
			TransferID: transferID,
			Folio:      "TR-00042",
			Stage:      "admin",
			NewState:   string(TransferPendingDestination),
		},
		ActionItemsStatusChanged: &ItemsStatusChangedDetails{
			Changes: []StatusChange{
				{IMEI: "356938035643809", OldStatus: StatusNew, NewStatus: StatusLost},
			},
		},
		ActionItemsReassigned: &ItemsReassignedDetails{
			FromProductTypeID: uuid.New(),
			ToProductTypeID:   uuid.New(),
			IMEIs:             []string{"356938035643809"},
		},
		ActionUnitRegistered: &UnitRegisteredDetails{
			IMEI:          "356938035643809",
			ProductTypeID: uuid.New(),
			LocationID:    uuid.New(),
		},
	}

	for action, payload := range payloads {
		raw, err := EncodeDetails(payload)
		require.NoError(t, err, action)

		entry := &AuditLog{Action: action, Details: raw}
		decoded, err := entry.DecodeDetails()
		require.NoError(t, err, action)
		assert.Equal(t, payload, decoded, action)
	}
}

func TestDecodeDetailsRejectsUnknownAction(t *testing.T) {
	entry := &AuditLog{Action: "mystery_action", Details: []byte(`{}`)}
	_, err := entry.DecodeDetails()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery_action")
}

func TestStatusChangeKeepsOldValue(t *testing.T) {
	details := &ItemsStatusChangedDetails{
		Changes: []StatusChange{
			{IMEI: "356938035643809", OldStatus: StatusForSale, NewStatus: StatusLost},
		},
	}
	raw, err := EncodeDetails(details)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"old_status":"for_sale"`)
	assert.Contains(t, string(raw), `"new_status":"lost"`)
}
