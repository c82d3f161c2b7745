package handlers

import (
	"net/http"

	"catering-backend/internal/models"
	"catering-backend/internal/services"
	"catering-backend/pkg/utils"
)

type StockHandler struct {
	Service *services.StockService
}

func NewStockHandler(s *services.StockService) *StockHandler {
	return &StockHandler{Service: s}
}

type stockMovementResponse struct {
	Item *models.StockItem `json:"item"`
	Txn  *models.StockTxn  `json:"transaction"`
}

func (h *StockHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req models.StockItemRequest
	if !decode(w, r, &req) {
		return
	}
	item, err := h.Service.CreateItem(r.Context(), actorFrom(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, item)
}

func (h *StockHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.Service.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

// ListItems accepts ?category= and ?low=true.
func (h *StockHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListItems(r.Context(), r.URL.Query().Get("category"), queryBool(r, "low"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, items)
}

func (h *StockHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.StockItemRequest
	if !decode(w, r, &req) {
		return
	}
	item, err := h.Service.UpdateItem(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, item)
}

func (h *StockHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteItem(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StockHandler) movement(w http.ResponseWriter, r *http.Request,
	apply func(services.Actor, *models.StockMovementRequest) (*models.StockItem, *models.StockTxn, error)) {
	var req models.StockMovementRequest
	if !decode(w, r, &req) {
		return
	}
	item, txn, err := apply(actorFrom(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, stockMovementResponse{Item: item, Txn: txn})
}

func (h *StockHandler) StockIn(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, func(a services.Actor, req *models.StockMovementRequest) (*models.StockItem, *models.StockTxn, error) {
		return h.Service.StockIn(r.Context(), a, req)
	})
}

func (h *StockHandler) StockOut(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, func(a services.Actor, req *models.StockMovementRequest) (*models.StockItem, *models.StockTxn, error) {
		return h.Service.StockOut(r.Context(), a, req)
	})
}

func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req models.StockAdjustRequest
	if !decode(w, r, &req) {
		return
	}
	item, txn, err := h.Service.Adjust(r.Context(), actorFrom(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, stockMovementResponse{Item: item, Txn: txn})
}

// ListTxns accepts ?item_id= and ?limit=.
func (h *StockHandler) ListTxns(w http.ResponseWriter, r *http.Request) {
	txns, err := h.Service.ListTxns(r.Context(), utils.QueryInt(r, "item_id", 0), utils.QueryInt(r, "limit", 200))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, txns)
}

func (h *StockHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}
