package handlers

import (
	"context"
	"fmt"
	"net/http"

	"tzu-threatmodel/internal/aggregate"
	"tzu-threatmodel/internal/database"
	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/metrics"
	"tzu-threatmodel/internal/middleware"
	"tzu-threatmodel/internal/stride"
	"tzu-threatmodel/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// WorkspaceHandler: рабочие сессии редактирования угроз.
// Изменения живут в памяти до POST /save.
type WorkspaceHandler struct {
	Cache *workspace.Cache
	Repo  *database.ThreatRepository
}

func NewWorkspaceHandler(cache *workspace.Cache, repo *database.ThreatRepository) *WorkspaceHandler {
	return &WorkspaceHandler{Cache: cache, Repo: repo}
}

func (h *WorkspaceHandler) load(ctx context.Context, systemID string) ([]dto.Threat, error) {
	sys, err := h.Repo.GetSystem(ctx, systemID)
	if err != nil {
		return nil, err
	}
	return database.SystemDTO(sys).Threats, nil
}

func (h *WorkspaceHandler) session(c *gin.Context) (*aggregate.Aggregate, bool) {
	agg, err := h.Cache.GetOrLoad(c.Request.Context(), middleware.WorkspaceID(c), c.Param("id"), h.load)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return agg, true
}

func (h *WorkspaceHandler) entry(c *gin.Context) (*aggregate.Entry, bool) {
	agg, ok := h.session(c)
	if !ok {
		return nil, false
	}
	e, err := agg.Threat(c.Param("tid"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return e, true
}

func view(agg *aggregate.Aggregate) dto.WorkspaceView {
	entries := agg.Threats()
	threats := make([]dto.Threat, 0, len(entries))
	for _, e := range entries {
		threats = append(threats, e.View())
	}
	return dto.WorkspaceView{
		SystemID:         agg.SystemID(),
		Threats:          threats,
		PendingDeletions: agg.PendingDeletions(),
	}
}

// Get: состояние сессии; при первом обращении угрозы грузятся из БД.
func (h *WorkspaceHandler) Get(c *gin.Context) {
	agg, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view(agg))
}

// Discard сбрасывает несохранённые изменения.
func (h *WorkspaceHandler) Discard(c *gin.Context) {
	h.Cache.Discard(middleware.WorkspaceID(c), c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ====== ИЗМЕНЕНИЯ В ПАМЯТИ ======

// SetFactors принимает {"<фактор>": значение, ...}; неизвестное имя: 400, ничего не меняется.
func (h *WorkspaceHandler) SetFactors(c *gin.Context) {
	raw, ok := bindObject(c)
	if !ok {
		return
	}
	e, ok := h.entry(c)
	if !ok {
		return
	}
	if err := e.Risk().SetFactors(raw); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e.View())
}

func (h *WorkspaceHandler) SetResidualRisk(c *gin.Context) {
	var req dto.ResidualRiskRequest
	if !bindValid(c, &req) {
		return
	}
	e, ok := h.entry(c)
	if !ok {
		return
	}
	e.Risk().SetResidualRisk(*req.ResidualRisk)
	c.JSON(http.StatusOK, e.View())
}

// SetRemediation переключает статус меры; остаточный риск не трогается.
func (h *WorkspaceHandler) SetRemediation(c *gin.Context) {
	var req dto.RemediationRequest
	if !bindValid(c, &req) {
		return
	}
	e, ok := h.entry(c)
	if !ok {
		return
	}
	if req.Status != nil {
		e.Risk().SetRemediationStatus(*req.Status)
	}
	if req.Description != nil {
		e.SetRemediationDescription(*req.Description)
	}
	if req.ControlTags != nil {
		e.SetControlTags(*req.ControlTags)
	}
	c.JSON(http.StatusOK, e.View())
}

func (h *WorkspaceHandler) SetDetails(c *gin.Context) {
	var req dto.DetailsRequest
	if !bindValid(c, &req) {
		return
	}
	e, ok := h.entry(c)
	if !ok {
		return
	}

	var threatType *string
	if req.Type != nil {
		// неизвестную категорию игнорируем, как и при сохранении в БД
		if cat, ok := stride.Normalize(*req.Type); ok {
			s := string(cat)
			threatType = &s
		}
	}
	e.SetDetails(req.Title, threatType, req.Description)
	c.JSON(http.StatusOK, e.View())
}

// AddThreat создаёт угрозу в БД и добавляет её в сессию.
func (h *WorkspaceHandler) AddThreat(c *gin.Context) {
	var req dto.CreateThreatRequest
	if !bindValid(c, &req) {
		return
	}
	agg, ok := h.session(c)
	if !ok {
		return
	}

	th, err := h.Repo.CreateThreat(c.Request.Context(), agg.SystemID(), req)
	if err != nil {
		fail(c, err)
		return
	}
	database.CreateAuditLog(middleware.WorkspaceID(c), "threat", th.ID.String(), "create", th.Title)

	e, err := agg.AddThreat(database.ThreatDTO(th))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e.View())
}

// DeleteThreat только помечает угрозу; удаление в БД: при сохранении.
func (h *WorkspaceHandler) DeleteThreat(c *gin.Context) {
	agg, ok := h.session(c)
	if !ok {
		return
	}
	if err := agg.MarkDeleted(c.Param("tid")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ====== СОХРАНЕНИЕ ======

// Save отправляет пакет обновлений, затем удаления по одному.
// Частичная неудача удалений: 207 с перечнем того, что не удалилось.
func (h *WorkspaceHandler) Save(c *gin.Context) {
	agg, ok := h.session(c)
	if !ok {
		return
	}

	res, err := agg.Save(c.Request.Context(), h.Repo)

	var partial *aggregate.PartialDeletionError
	switch {
	case err == nil:
		metrics.ObserveSave(metrics.ResultOK, len(res.Deleted), 0)
	case errors.As(err, &partial):
		metrics.ObserveSave(metrics.ResultPartial, len(res.Deleted), len(res.Failures))
	case errors.Is(err, aggregate.ErrSaveInProgress):
		metrics.ObserveSave(metrics.ResultBusy, 0, 0)
		fail(c, err)
		return
	default:
		metrics.ObserveSave(metrics.ResultError, 0, 0)
		fail(c, err)
		return
	}

	database.CreateAuditLog(middleware.WorkspaceID(c), "information_system", agg.SystemID(), "save",
		fmt.Sprintf("updated %d, deleted %d, failed %d", res.Updated, len(res.Deleted), len(res.Failures)))

	code := http.StatusOK
	if partial != nil {
		code = http.StatusMultiStatus
	}
	c.JSON(code, res.Report())
}
