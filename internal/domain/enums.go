package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleCashier     Role = "cashier"
	RoleStockKeeper Role = "stock_keeper"
)

var roles = []Role{RoleAdmin, RoleManager, RoleCashier, RoleStockKeeper}

func ParseRole(raw string) (Role, error) {
	value := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, r := range roles {
		if r == value {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role %q: must be one of %s", raw, joinValues(roles))
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentJazzCash     PaymentMethod = "jazzcash"
	PaymentEasypaisa    PaymentMethod = "easypaisa"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentCredit       PaymentMethod = "credit"
	PaymentMixed        PaymentMethod = "mixed"
)

// SalePaymentMethods are accepted at the POS.
var SalePaymentMethods = []PaymentMethod{
	PaymentCash, PaymentCard, PaymentJazzCash, PaymentEasypaisa, PaymentBankTransfer, PaymentCredit, PaymentMixed,
}

// PurchasePaymentMethods are accepted when paying suppliers.
var PurchasePaymentMethods = []PaymentMethod{
	PaymentCash, PaymentBankTransfer, PaymentJazzCash, PaymentEasypaisa, PaymentCheque, PaymentCredit,
}

func ParseSalePaymentMethod(raw string) (PaymentMethod, error) {
	return parsePaymentMethod(raw, SalePaymentMethods)
}

func ParsePurchasePaymentMethod(raw string) (PaymentMethod, error) {
	return parsePaymentMethod(raw, PurchasePaymentMethods)
}

func parsePaymentMethod(raw string, allowed []PaymentMethod) (PaymentMethod, error) {
	value := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	for _, m := range allowed {
		if m == value {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q: must be one of %s", raw, joinValues(allowed))
}

type AdjustmentReason string

const (
	ReasonDamage     AdjustmentReason = "damage"
	ReasonLost       AdjustmentReason = "lost"
	ReasonFound      AdjustmentReason = "found"
	ReasonCorrection AdjustmentReason = "correction"
	ReasonSample     AdjustmentReason = "sample"
	ReasonGift       AdjustmentReason = "gift"
)

var AdjustmentReasons = []AdjustmentReason{
	ReasonDamage, ReasonLost, ReasonFound, ReasonCorrection, ReasonSample, ReasonGift,
}

// ParseAdjustmentReason is case sensitive: stored reasons are lower case.
func ParseAdjustmentReason(raw string) (AdjustmentReason, error) {
	for _, r := range AdjustmentReasons {
		if string(r) == raw {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid reason. Must be one of: %s", joinValues(AdjustmentReasons))
}

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

func ParseProductStatus(raw string) (ProductStatus, error) {
	switch ProductStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case ProductActive:
		return ProductActive, nil
	case ProductInactive:
		return ProductInactive, nil
	}
	return "", fmt.Errorf("invalid product status %q: must be active or inactive", raw)
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
