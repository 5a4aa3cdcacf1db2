package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFolio(t *testing.T) {
	assert.Equal(t, "TR-00001", FormatFolio(1))
	assert.Equal(t, "TR-00042", FormatFolio(42))
	assert.Equal(t, "TR-99999", FormatFolio(99999))
	// Folios past five digits widen instead of truncating.
	assert.Equal(t, "TR-123456", FormatFolio(123456))
}

func TestTransferStateTerminal(t *testing.T) {
	assert.False(t, TransferPendingAdmin.Terminal())
	assert.False(t, TransferPendingDestination.Terminal())
	assert.True(t, TransferCompleted.Terminal())
	assert.True(t, TransferCancelled.Terminal())
}

func TestUnitStatusValid(t *testing.T) {
	for _, s := range []UnitStatus{StatusNew, StatusUnderRepair, StatusRepaired, StatusForSale, StatusSold, StatusLost, StatusClearance} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, UnitStatus("teleported").Valid())
	assert.False(t, UnitStatus("").Valid())
}
