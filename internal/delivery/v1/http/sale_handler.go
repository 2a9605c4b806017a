package http

import (
	"math"
	"net/http"
	"net/url"

	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
)

type SaleHandler struct {
	inventoryUsecase usecase.InventoryUC
	logger           logger.Logger
}

func NewSaleHandler(inventoryUsecase usecase.InventoryUC, logger logger.Logger) *SaleHandler {
	return &SaleHandler{inventoryUsecase: inventoryUsecase, logger: logger}
}

// sell
//
//	@Summary		Продажа
//	@Description	Списывает остаток. Продажа с ненулевой ценой записывается в журнал, и цена возвращается в ответе
//	@Tags			sales
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SellRequest	true	"Товар, количество и цена за единицу"
//	@Success		200		{object}	SellResponse
//	@Header			200		{string}	Location	"URL продаж товара"
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/v1/sales [post]
func (s *SaleHandler) sell(w http.ResponseWriter, r *http.Request) {
	var req SellRequest
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

	price, err := parsePrice(req.Price)
	if err != nil {
		s.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := s.inventoryUsecase.Sell(r.Context(), usecase.NewSellReq(req.Name, amount, price))
	if err != nil {
		logUsecaseError(s.logger, err)
		WriteError(w, err)
		return
	}

	out := SellResponse{
		Name:   res.Name,
		Amount: res.Amount,
	}
	if res.Recorded {
		out.Price = priceJSON(res.Price)
	}

	w.Header().Set("Location", baseURL(r)+"/v1/sales?"+url.Values{"name": {res.Name}}.Encode())
	WriteSuccess(w, http.StatusOK, out)
}

// totalSales
//
//	@Summary		Выручка
//	@Description	Сумма amount*price по журналу продаж, округлённая до 2 знаков
//	@Tags			sales
//	@Produce		json
//	@Success		200	{object}	SalesTotalResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/v1/sales [get]
func (s *SaleHandler) totalSales(w http.ResponseWriter, r *http.Request) {
	total, err := s.inventoryUsecase.TotalRevenue(r.Context())
	if err != nil {
		logUsecaseError(s.logger, err)
		WriteError(w, err)
		return
	}

	sales, _ := total.Float64()
	if math.IsInf(sales, 0) || math.IsNaN(sales) {
		err = e.Wrap("revenue "+total.String()+" is not representable as JSON number", e.ErrInternalServerError)
		logUsecaseError(s.logger, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, SalesTotalResponse{Sales: sales})
}

// listRecords
//
//	@Summary		Журнал продаж
//	@Description	Записанные продажи в порядке добавления
//	@Tags			sales
//	@Produce		json
//	@Success		200	{array}		SaleRecordResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/v1/sales/records [get]
func (s *SaleHandler) listRecords(w http.ResponseWriter, r *http.Request) {
	sales, err := s.inventoryUsecase.ListSales(r.Context())
	if err != nil {
		logUsecaseError(s.logger, err)
		WriteError(w, err)
		return
	}

	res := make([]SaleRecordResponse, 0, len(sales))
	for _, sale := range sales {
		res = append(res, SaleRecordResponse{
			Name:      sale.ProductName,
			Amount:    sale.Amount,
			Price:     priceJSON(sale.Price),
			CreatedAt: sale.CreatedAt,
		})
	}

	WriteSuccess(w, http.StatusOK, res)
}
