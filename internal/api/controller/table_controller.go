package controller

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"ctchen222/Connect-Four/internal/api/models"
	"ctchen222/Connect-Four/internal/api/response"
	"ctchen222/Connect-Four/internal/api/service"
	"ctchen222/Connect-Four/internal/repository"
	"ctchen222/Connect-Four/internal/validator"

	"github.com/gin-gonic/gin"
)

// TableController handles table creation and lookup.
type TableController struct {
	tableService service.TableService
}

// NewTableController creates a new TableController.
func NewTableController(tableService service.TableService) *TableController {
	return &TableController{tableService: tableService}
}

// Create opens a new table. The body is optional.
func (tc *TableController) Create(c *gin.Context) {
	var req models.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	id, snap, err := tc.tableService.Create(c.Request.Context(), req.Players)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to create table", "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "could not create table")
		return
	}

	slog.InfoContext(c.Request.Context(), "Table created", "table.id", id, "players", snap.Players)
	response.SuccessResponse(c, models.CreateTableResponse{TableID: id, State: snap})
}

// Get returns the stored state of a table.
func (tc *TableController) Get(c *gin.Context) {
	id := c.Param("id")
	snap, err := tc.tableService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			response.ErrorResponse(c, http.StatusNotFound, "table not found")
			return
		}
		slog.ErrorContext(c.Request.Context(), "Failed to load table", "table.id", id, "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "could not load table")
		return
	}

	response.SuccessResponse(c, models.CreateTableResponse{TableID: id, State: snap})
}
