package handler

import (
	"strconv"
	"strings"

	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}

// parseYearMonth reads the :year and :month path params. Months are 1-based.
func parseYearMonth(c echo.Context) (year, month int, ok bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, false
	}
	month, err = strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// parseAmount parses a decimal amount sent as a string
func parseAmount(field, raw string) (decimal.Decimal, *ValidationError) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Message: "Must be a valid decimal number"}
	}
	return amount, nil
}

func parseOptionalAmount(field string, raw *string) (*decimal.Decimal, *ValidationError) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	amount, verr := parseAmount(field, *raw)
	if verr != nil {
		return nil, verr
	}
	return &amount, nil
}

func optionalString(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

func isDateParam(raw string) bool {
	_, err := util.ParseDateKey(raw)
	return err == nil
}
