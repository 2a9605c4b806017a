package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// maxBodySize: больший body считается ошибкой клиента.
const maxBodySize = 1 << 20

// ErrorResponse: единый ответ об ошибке. Детали причины клиенту не раскрываются.
type ErrorResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
	}
}

// ToHTTPResponse сопоставляет ошибку со статусом ответа.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case e.IsBadRequest(err):
		return http.StatusBadRequest, e.GenericMessage
	case errors.Is(err, e.ErrTooManyRequests):
		return http.StatusTooManyRequests, e.GenericMessage
	default:
		return http.StatusInternalServerError, e.GenericMessage
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(msg))
}

// WriteSuccess кодирует ответ до записи статуса: ошибка кодирования превращается в 500, а не в пустой 200.
func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(NewErrorResponse(e.GenericMessage))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// decodeBody читает JSON-объект запроса. Пустое тело, не-JSON и лишние данные после объекта отклоняются.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrMalformedRequest)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return e.ErrMalformedRequest
	}

	return nil
}

// parseAmount: отсутствующее поле означает 1. Допускается только целочисленный JSON-литерал.
func parseAmount(raw json.RawMessage) (int64, error) {
	if isAbsent(raw) {
		return 1, nil
	}

	var n json.Number
	if err := strictNumber(raw, &n); err != nil {
		return 0, e.ErrInvalidAmount
	}

	amount, err := n.Int64()
	if err != nil {
		return 0, e.ErrInvalidAmount
	}

	return amount, nil
}

// parsePrice: отсутствующее поле означает 0. Принимается JSON-число или строка с числом
// в границах domain.ValidatePrice.
func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	if isAbsent(raw) {
		return decimal.Zero, nil
	}

	text, err := priceText(raw)
	if err != nil {
		return decimal.Zero, e.ErrInvalidPrice
	}

	price, err := decimal.NewFromString(text)
	if err != nil || !domain.ValidatePrice(price) {
		return decimal.Zero, e.ErrInvalidPrice
	}

	return price, nil
}

func priceText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	if err := strictNumber(raw, &n); err != nil {
		return "", err
	}

	return n.String(), nil
}

// priceJSON выводит цену числом без потери точности.
func priceJSON(price decimal.Decimal) json.Number {
	return json.Number(price.String())
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0
}

// strictNumber разбирает raw только как числовой литерал: null, строки и bool отклоняются.
func strictNumber(raw json.RawMessage, n *json.Number) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}

	num, ok := v.(json.Number)
	if !ok {
		return e.ErrMalformedRequest
	}

	*n = num
	return nil
}
