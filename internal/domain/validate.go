package domain

import (
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// MaxProductNameLen: максимальная длина имени товара в символах.
const MaxProductNameLen = 8

// ValidateProductName: непустое имя только из букв, не длиннее 8 символов.
// Регистр сохраняется, нормализация не выполняется.
func ValidateProductName(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > MaxProductNameLen {
		return false
	}

	for _, r := range name {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

// ValidateAmount: количество должно быть строго больше нуля.
func ValidateAmount(amount int64) bool {
	return amount > 0
}

// Границы цены: меньше 10^15 и не больше 8 знаков после запятой.
const (
	MaxPriceIntDigits = 15
	MaxPriceScale     = 8

	// maxPriceExponent отсекает записи вида 1e-100000000 до любой арифметики над decimal.
	maxPriceExponent = 64
)

var maxPrice = decimal.New(1, MaxPriceIntDigits)

// ValidatePrice: цена неотрицательна и укладывается в границы хранения.
// Экспонента проверяется первой, остальные сравнения после этого дешёвые.
func ValidatePrice(price decimal.Decimal) bool {
	if price.IsNegative() {
		return false
	}

	if exp := price.Exponent(); exp > maxPriceExponent || exp < -maxPriceExponent {
		return false
	}

	if price.GreaterThanOrEqual(maxPrice) {
		return false
	}

	return price.Equal(price.Truncate(MaxPriceScale))
}
