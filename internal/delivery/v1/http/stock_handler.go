package http

import (
	"net/http"
	"net/url"

	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type StockHandler struct {
	inventoryUsecase usecase.InventoryUC
	logger           logger.Logger
}

func NewStockHandler(inventoryUsecase usecase.InventoryUC, logger logger.Logger) *StockHandler {
	return &StockHandler{inventoryUsecase: inventoryUsecase, logger: logger}
}

// restock
//
//	@Summary		Пополнение остатка
//	@Description	Увеличивает остаток товара, создавая товар при первом пополнении
//	@Tags			stocks
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RestockRequest	true	"Товар и количество"
//	@Success		200		{object}	RestockResponse
//	@Header			200		{string}	Location	"URL остатка товара"
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/v1/stocks [post]
func (s *StockHandler) restock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := s.inventoryUsecase.Restock(r.Context(), usecase.NewRestockReq(req.Name, amount))
	if err != nil {
		logUsecaseError(s.logger, err)
		WriteError(w, err)
		return
	}

	w.Header().Set("Location", baseURL(r)+"/v1/stocks/"+url.PathEscape(res.Name))
	WriteSuccess(w, http.StatusOK, RestockResponse{
		Name:   res.Name,
		Amount: res.Amount,
	})
}

// getStock
//
//	@Summary		Остаток товара
//	@Description	Возвращает {"<name>": stock}; для неизвестного товара остаток 0
//	@Tags			stocks
//	@Produce		json
//	@Param			name	path		string	true	"Имя товара (до 8 букв)"
//	@Success		200		{object}	map[string]integer
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/v1/stocks/{name} [get]
func (s *StockHandler) getStock(w http.ResponseWriter, r *http.Request) {
	name, err := pathName(r)
	if err != nil {
		s.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	stock, err := s.inventoryUsecase.GetStock(r.Context(), name)
	if err != nil {
		logUsecaseError(s.logger, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]int64{name: stock})
}

// listStock
//
//	@Summary		Товары в наличии
//	@Description	Все товары с положительным остатком, упорядоченные по имени
//	@Tags			stocks
//	@Produce		json
//	@Success		200	{object}	map[string]integer
//	@Failure		500	{object}	ErrorResponse
//	@Router			/v1/stocks [get]
func (s *StockHandler) listStock(w http.ResponseWriter, r *http.Request) {
	levels, err := s.inventoryUsecase.ListInStock(r.Context())
	if err != nil {
		logUsecaseError(s.logger, err)
		WriteError(w, err)
		return
	}

	// encoding/json сортирует ключи map побайтово, что совпадает с порядком хранилища.
	res := make(map[string]int64, len(levels))
	for _, l := range levels {
		res[l.Name] = l.Stock
	}

	WriteSuccess(w, http.StatusOK, res)
}

// resetAll
//
//	@Summary		Сброс данных
//	@Description	Удаляет все товары и весь журнал продаж
//	@Tags			stocks
//	@Produce		json
//	@Success		200	{object}	MessageResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/v1/stocks [delete]
func (s *StockHandler) resetAll(w http.ResponseWriter, r *http.Request) {
	if err := s.inventoryUsecase.ResetAll(r.Context()); err != nil {
		logUsecaseError(s.logger, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, MessageResponse{Message: resetMessage})
}

func logUsecaseError(logger logger.Logger, err error) {
	if e.IsBadRequest(err) {
		logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		return
	}

	logger.Errorf(err, "%d %s", http.StatusInternalServerError, e.ErrInternalServerError.Error())
}

// pathName: chi маршрутизирует по RawPath, если он задан, и тогда параметр ещё экранирован.
// Иначе net/http уже раскодировал путь, и повторное раскодирование превратило бы a%2541 в aA.
func pathName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}

	unescaped, err := url.PathUnescape(name)
	if err != nil {
		return "", e.Wrap(err.Error(), e.ErrInvalidProductName)
	}

	return unescaped, nil
}

// baseURL восстанавливает схему и хост исходного запроса для заголовка Location.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	return scheme + "://" + r.Host
}
