package ginserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vshulcz/hostdash/internal/domain"
	"github.com/vshulcz/hostdash/internal/services/monitor"
)

// Handler exposes the dashboard page and its JSON/websocket feeds.
type Handler struct {
	svc    *monitor.Service
	logger *zap.Logger
}

// NewHandler wires the monitor service into gin handlers.
func NewHandler(svc *monitor.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// infoView adds humanized strings next to the raw numbers.
type infoView struct {
	domain.HostInfo
	MemoryTotalHuman     string `json:"memory_total_human"`
	MemoryAvailableHuman string `json:"memory_available_human"`
	MemoryUsedHuman      string `json:"memory_used_human"`
	DiskTotalHuman       string `json:"disk_total_human"`
	DiskUsedHuman        string `json:"disk_used_human"`
	DiskFreeHuman        string `json:"disk_free_human"`
	Warning              string `json:"warning,omitempty"`
}

func newInfoView(info domain.HostInfo, err error) infoView {
	v := infoView{
		HostInfo:             info,
		MemoryTotalHuman:     humanize.IBytes(info.Memory.Total),
		MemoryAvailableHuman: humanize.IBytes(info.Memory.Available),
		MemoryUsedHuman:      humanize.IBytes(info.Memory.Used),
		DiskTotalHuman:       humanize.IBytes(info.Disk.Total),
		DiskUsedHuman:        humanize.IBytes(info.Disk.Used),
		DiskFreeHuman:        humanize.IBytes(info.Disk.Free),
	}
	if err != nil {
		v.Warning = err.Error()
	}
	return v
}

// Index renders the dashboard page with the general information header.
func (h *Handler) Index(c *gin.Context) {
	info, err := h.svc.Info(c.Request.Context())
	if err != nil {
		h.logger.Warn("host info incomplete", zap.Error(err))
	}
	st := h.svc.Stats()
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Info":      newInfoView(info, err),
		"RefreshMS": st.Refresh.Milliseconds(),
		"History":   st.History,
		"Started":   humanize.Time(startedAt),
	})
}

// WindowJSON handles `GET /api/v1/window`.
func (h *Handler) WindowJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Window())
}

// LatestJSON handles `GET /api/v1/latest/:series`.
func (h *Handler) LatestJSON(c *gin.Context) {
	id := domain.SeriesID(c.Param("series"))
	s, err := h.svc.Latest(id)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": id, "value": s})
}

// InfoJSON handles `GET /api/v1/info`. Partially readable host facts are
// still returned, with the failure in "warning".
func (h *Handler) InfoJSON(c *gin.Context) {
	info, err := h.svc.Info(c.Request.Context())
	if err != nil {
		h.logger.Warn("host info incomplete", zap.Error(err))
	}
	c.JSON(http.StatusOK, newInfoView(info, err))
}

// StatusJSON handles `GET /api/v1/status`.
func (h *Handler) StatusJSON(c *gin.Context) {
	st := h.svc.Stats()
	c.JSON(http.StatusOK, gin.H{
		"stats":         st,
		"ticks_human":   humanize.Comma(int64(st.Ticks)), // #nosec G115
		"last_duration": st.LastDuration.String(),
		"refresh":       st.Refresh.String(),
	})
}

// Ping handles `GET /ping`.
func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

var startedAt = time.Now()

func httpError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, domain.ErrUnknownSeries):
		c.String(http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrEmptySeries):
		c.String(http.StatusConflict, "no samples yet")
	default:
		c.String(http.StatusInternalServerError, "internal error")
	}
}
