package order

import (
	"fmt"
	"strings"
	"time"
)

// TransactionSequenceKey names the counter for transaction numbers of one
// branch in one month
func TransactionSequenceKey(dateIn time.Time, branchCode string) string {
	return fmt.Sprintf("txn:%s:%s", dateIn.Format("2006-01"), branchCode)
}

// PaymentSequenceKey names the payment counter of a branch
func PaymentSequenceKey(branchCode string) string {
	return "pay:" + branchCode
}

// FormatTransactionID builds YYYY-MM-NNNNN-CODE
func FormatTransactionID(dateIn time.Time, seq int64, branchCode string) string {
	return fmt.Sprintf("%s-%05d-%s", dateIn.Format("2006-01"), seq, branchCode)
}

// FormatLineItemID builds YYYY-MM-NNNNN-NNN-CODE from its transaction id.
// n counts from 1.
func FormatLineItemID(transactionID string, n int) string {
	i := strings.LastIndex(transactionID, "-")
	if i < 0 {
		return fmt.Sprintf("%s-%03d", transactionID, n)
	}
	return fmt.Sprintf("%s-%03d%s", transactionID[:i], n, transactionID[i:])
}

// FormatPaymentID builds PAY-<n>-CODE
func FormatPaymentID(seq int64, branchCode string) string {
	return fmt.Sprintf("PAY-%d-%s", seq, branchCode)
}
