package roomhandler

import (
	"errors"
	"net/http"

	"chatroomgo/internal/services/room"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc room.IRoomService
}

func New(svc room.IRoomService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/rooms", h.bind)
	r.GET("/rooms/:code", h.info)
	r.GET("/rooms/:code/history", h.history)
}

// bind is the room-selection entry point: it validates the display name and
// room code, creates the room when asked to, and returns the session the
// client presents when opening its socket.
func (h *Handler) bind(ginCtx *gin.Context) {
	var body BindRoomBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	sess, err := h.svc.ValidateAndBind(body.Name, body.Code, body.Create)
	if err != nil {
		ginCtx.JSON(bindErrorStatus(err), &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, sess)
}

func (h *Handler) info(ginCtx *gin.Context) {
	dto, err := h.svc.RoomInfo(ginCtx.Param("code"))
	if err != nil {
		ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, dto)
}

func (h *Handler) history(ginCtx *gin.Context) {
	ginCtx.JSON(http.StatusOK, h.svc.History(ginCtx.Param("code")))
}

func bindErrorStatus(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrMissingName), errors.Is(err, room.ErrMissingCode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
