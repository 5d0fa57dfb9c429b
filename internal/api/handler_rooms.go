package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"complaint-tracker-backend/internal/model"
	"complaint-tracker-backend/internal/store"
	"complaint-tracker-backend/internal/token"
)

type roomRequest struct {
	BedNo      string `json:"bed_no" binding:"required"`
	RoomNo     string `json:"room_no" binding:"required"`
	Block      string `json:"block" binding:"required"`
	FloorNo    int    `json:"floor_no"`
	Ward       string `json:"ward" binding:"required"`
	Speciality string `json:"speciality" binding:"required"`
	RoomType   string `json:"room_type" binding:"required"`
	Status     string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ListRooms handles GET /api/rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	q := store.RoomQuery{
		Status:     c.Query("status"),
		Ward:       c.Query("ward"),
		Speciality: c.Query("speciality"),
		RoomType:   c.Query("room_type"),
		Search:     c.Query("search"),
	}

	rooms, err := h.store.ListRooms(c.Request.Context(), q)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// CreateRoom handles POST /api/rooms. The signed QR token is generated as
// part of creation, so the response is immediately printable.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := model.Room{
		BedNo:      req.BedNo,
		RoomNo:     req.RoomNo,
		Block:      req.Block,
		FloorNo:    req.FloorNo,
		Ward:       req.Ward,
		Speciality: req.Speciality,
		RoomType:   req.RoomType,
		Status:     req.Status,
	}
	if room.Status == "" {
		room.Status = model.RoomStatusInactive
	}

	if _, err := h.codec.EnsureToken(&room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate room token"})
		return
	}

	if err := h.store.DB().Create(&room).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Room with this identity already exists"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

// GetRoom handles GET /api/rooms/:id.
func (h *Handler) GetRoom(c *gin.Context) {
	room, ok := h.loadRoom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, room)
}

// UpdateRoom handles PUT /api/rooms/:id. Changing identity fields refreshes
// the cached token; submitting unchanged fields leaves it alone.
func (h *Handler) UpdateRoom(c *gin.Context) {
	room, ok := h.loadRoom(c)
	if !ok {
		return
	}

	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room.BedNo = req.BedNo
	room.RoomNo = req.RoomNo
	room.Block = req.Block
	room.FloorNo = req.FloorNo
	room.Ward = req.Ward
	room.Speciality = req.Speciality
	room.RoomType = req.RoomType
	if req.Status != "" {
		room.Status = req.Status
	}

	if _, err := h.codec.EnsureToken(room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh room token"})
		return
	}

	if err := h.store.DB().Save(room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update room"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /api/rooms/:id.
func (h *Handler) DeleteRoom(c *gin.Context) {
	room, ok := h.loadRoom(c)
	if !ok {
		return
	}
	if err := h.store.DB().Delete(room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room"})
		return
	}
	c.Status(http.StatusNoContent)
}

type roomStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateRoomStatus handles POST /api/rooms/:id/status.
func (h *Handler) UpdateRoomStatus(c *gin.Context) {
	room, ok := h.loadRoom(c)
	if !ok {
		return
	}

	var req roomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !model.IsValidRoomStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	room.Status = req.Status
	if _, err := h.codec.EnsureToken(room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh room token"})
		return
	}
	if err := h.store.DB().Save(room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update room status"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// RoomQR handles GET /api/rooms/:id/qr, rendering the submission URL for the
// room's signed token as a PNG.
func (h *Handler) RoomQR(c *gin.Context) {
	room, ok := h.loadRoom(c)
	if !ok {
		return
	}

	updated, err := h.codec.EnsureToken(room)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate room token"})
		return
	}
	if updated {
		if err := h.store.DB().Save(room).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist room token"})
			return
		}
	}

	payload, signature, err := token.Split(room.QRToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored room token is malformed"})
		return
	}

	url := fmt.Sprintf("%s/submit?payload=%s&signature=%s", h.publicBaseURL, payload, signature)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// loadRoom fetches the room addressed by the :id parameter, writing the
// error response itself when the lookup fails.
func (h *Handler) loadRoom(c *gin.Context) (*model.Room, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return nil, false
	}

	var room model.Room
	if err := h.store.DB().First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve room"})
		}
		return nil, false
	}
	return &room, true
}
