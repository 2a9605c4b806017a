package e

import (
	"errors"
	"fmt"
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrUnknownDBDriver      = fmt.Errorf("unknown database driver")

	// 400 Bad Request
	ErrStatusBadRequest   = fmt.Errorf("bad request")
	ErrMalformedRequest   = fmt.Errorf("malformed request body")
	ErrInvalidProductName = fmt.Errorf("invalid product name")
	ErrInvalidAmount      = fmt.Errorf("invalid amount")
	ErrInvalidPrice       = fmt.Errorf("invalid price")
	ErrProductNotFound    = fmt.Errorf("product not found")
	ErrInsufficientStock  = fmt.Errorf("insufficient stock")

	// 429 Too Many Requests
	ErrTooManyRequests = fmt.Errorf("too many requests")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
	ErrStockOverflow       = fmt.Errorf("stock overflow")
)

// GenericMessage: единственное сообщение об ошибке, которое видит клиент.
const GenericMessage = "ERROR"

var badRequest = []error{
	ErrStatusBadRequest,
	ErrMalformedRequest,
	ErrInvalidProductName,
	ErrInvalidAmount,
	ErrInvalidPrice,
	ErrProductNotFound,
	ErrInsufficientStock,
}

// IsBadRequest сообщает, что ошибка означает отказ по входным данным или остаткам, а не сбой хранилища.
func IsBadRequest(err error) bool {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
