package httpapi

import (
	"net/http"
	"time"

	"promo-eventserver/pkg/errutil"
	"promo-eventserver/services/event"
	"promo-eventserver/services/inventory"
	"promo-eventserver/services/item"
	"promo-eventserver/services/point"
	"promo-eventserver/services/rewardlog"
	"promo-eventserver/services/userdata"
	"promo-eventserver/services/userevent"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type Handler struct {
	item      *item.Service
	event     *event.Service
	userdata  *userdata.Service
	point     *point.Service
	inventory *inventory.Service
	rewardlog *rewardlog.Service
	userevent *userevent.Service
}

type HandlerParams struct {
	fx.In
	Item      *item.Service
	Event     *event.Service
	UserData  *userdata.Service
	Point     *point.Service
	Inventory *inventory.Service
	RewardLog *rewardlog.Service
	UserEvent *userevent.Service
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		item:      p.Item,
		event:     p.Event,
		userdata:  p.UserData,
		point:     p.Point,
		inventory: p.Inventory,
		rewardlog: p.RewardLog,
		userevent: p.UserEvent,
	}
}

type createEventRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Condition   event.Condition `json:"condition"`
	Rewards     []event.Reward  `json:"rewards"`
	StartAt     time.Time       `json:"start_at"`
	EndAt       time.Time       `json:"end_at"`
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("REQUEST_BODY_INVALID", "invalid request body", errutil.WithErr(err)))
		return
	}

	ev, err := h.event.Create(c.Request.Context(), event.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Condition:   req.Condition,
		Rewards:     req.Rewards,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Issuer:      c.GetString(ctxUserID),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.event.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) GetEvent(c *gin.Context) {
	ev, err := h.event.Get(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

type setEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) SetEventEnabled(c *gin.Context) {
	var req setEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("REQUEST_BODY_INVALID", "invalid request body", errutil.WithErr(err)))
		return
	}

	ev, err := h.event.SetEnabled(c.Request.Context(), c.Param("event_id"), req.Enabled)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

type setUserDataRequest struct {
	Data map[string]float64 `json:"data"`
}

func (h *Handler) SetUserData(c *gin.Context) {
	var req setUserDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("REQUEST_BODY_INVALID", "invalid request body", errutil.WithErr(err)))
		return
	}

	set, err := h.userdata.Set(c.Request.Context(), c.Param("user_id"), req.Data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *Handler) ListRewardLogs(c *gin.Context) {
	logs, err := h.rewardlog.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reward_logs": logs})
}

func (h *Handler) ListUserRewardLogs(c *gin.Context) {
	logs, err := h.rewardlog.ListByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reward_logs": logs})
}

func (h *Handler) ListItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.item.List()})
}

func (h *Handler) ListUserEvents(c *gin.Context) {
	ues, err := h.userevent.List(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_events": ues})
}

func (h *Handler) GetUserEvent(c *gin.Context) {
	ue, err := h.userevent.Get(c.Request.Context(), c.GetString(ctxUserID), c.Param("event_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ue)
}

func (h *Handler) AcceptEvent(c *gin.Context) {
	ue, err := h.userevent.Accept(c.Request.Context(), c.GetString(ctxUserID), c.Param("event_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ue)
}

func (h *Handler) RefreshEvent(c *gin.Context) {
	ue, err := h.userevent.Refresh(c.Request.Context(), c.GetString(ctxUserID), c.Param("event_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ue)
}

type claimRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *Handler) ClaimReward(c *gin.Context) {
	req := claimRequest{Quantity: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(errutil.BadRequest("REQUEST_BODY_INVALID", "invalid request body", errutil.WithErr(err)))
			return
		}
	}

	ue, err := h.userevent.Claim(c.Request.Context(),
		c.GetString(ctxUserID), c.Param("event_id"), c.Param("reward_key"), req.Quantity)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ue)
}

func (h *Handler) GetPoints(c *gin.Context) {
	acct, err := h.point.Get(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, acct)
}

func (h *Handler) GetPointHistory(c *gin.Context) {
	history, err := h.point.History(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *Handler) GetInventory(c *gin.Context) {
	items, err := h.inventory.Get(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) GetUserData(c *gin.Context) {
	set, err := h.userdata.Get(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, set)
}
