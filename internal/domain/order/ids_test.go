package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatIDs(t *testing.T) {
	dateIn := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	txnID := FormatTransactionID(dateIn, 7, "SMVAL")
	assert.Equal(t, "2026-03-00007-SMVAL", txnID)
	assert.Equal(t, "2026-03-00007-001-SMVAL", FormatLineItemID(txnID, 1))
	assert.Equal(t, "2026-03-00007-012-SMVAL", FormatLineItemID(txnID, 12))
	assert.Equal(t, "PAY-3-VAL", FormatPaymentID(3, "VAL"))
	assert.Equal(t, "txn:2026-03:SMVAL", TransactionSequenceKey(dateIn, "SMVAL"))
}
