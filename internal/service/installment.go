package service

import (
	"fmt"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitInstallments divides total into count amounts rounded down to cents,
// with the leftover cents added to the last one. The parts always sum to total.
func SplitInstallments(total decimal.Decimal, count int) []decimal.Decimal {
	if count < 1 {
		return nil
	}
	n := decimal.NewFromInt(int64(count))
	base := total.Div(n).RoundFloor(2)
	remainder := total.Sub(base.Mul(n)).Round(2)

	parts := make([]decimal.Decimal, count)
	for i := range parts {
		parts[i] = base
	}
	parts[count-1] = base.Add(remainder)
	return parts
}

// InvoicePeriod returns the invoice a purchase on dateKey is billed in.
// Purchases on or after the closing day roll to the next month's invoice.
func InvoicePeriod(dateKey string, closingDay int32) (year, month int, err error) {
	year, month, day, err := util.SplitDateKey(dateKey)
	if err != nil {
		return 0, 0, err
	}
	if int32(day) >= closingDay {
		year, month = util.NextMonth(year, month)
	}
	return year, month, nil
}

// InvoicePeriodOf returns the invoice a card transaction belongs to.
// Installments keep the month AllocateInstallments dated them in, since the
// closing-day rule was applied to the purchase date and the due day may fall
// after the closing day.
func InvoicePeriodOf(tx *domain.Transaction, card *domain.CreditCard) (year, month int, err error) {
	if tx.InstallmentCurrent != nil {
		year, month, _, err = util.SplitDateKey(tx.Date)
		return year, month, err
	}
	return InvoicePeriod(tx.Date, card.ClosingDay)
}

// AllocateInstallments expands a card purchase into count dated installments.
// The first lands in the invoice of the purchase date and each following one a
// month later, dated on the card's due day. All share one group id.
func AllocateInstallments(purchase *domain.Transaction, card *domain.CreditCard, count int) ([]*domain.Transaction, error) {
	if count < 1 {
		return nil, domain.ErrInstallmentCountInvalid
	}

	firstYear, firstMonth, err := InvoicePeriod(purchase.Date, card.ClosingDay)
	if err != nil {
		return nil, err
	}

	amounts := SplitInstallments(purchase.Amount, count)
	groupID := uuid.New()
	total := int32(count)
	cardID := card.ID

	installments := make([]*domain.Transaction, 0, count)
	for i := 0; i < count; i++ {
		year, month := util.ShiftMonth(firstYear, firstMonth, i)
		current := int32(i + 1)
		gid := groupID

		inst := *purchase
		inst.ID = uuid.Nil
		inst.Description = fmt.Sprintf("%s (%d/%d)", purchase.Description, i+1, count)
		inst.Amount = amounts[i]
		inst.Date = util.ClampedDateKey(year, month, int(card.DueDay))
		inst.Tags = append([]string(nil), purchase.Tags...)
		inst.CardID = &cardID
		inst.TransactionGroupID = &gid
		inst.InstallmentCurrent = &current
		inst.InstallmentTotal = &total
		inst.IsPaid = false
		inst.Nature = domain.NatureFixed
		installments = append(installments, &inst)
	}
	return installments, nil
}
