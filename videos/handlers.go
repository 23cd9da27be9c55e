package videos

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/kojish2018/video-ai-creator/models"
	"github.com/kojish2018/video-ai-creator/tasks"
)

type Handler struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHandler(db *gorm.DB, rdb *redis.Client) *Handler {
	return &Handler{DB: db, Redis: rdb}
}

type CreateVideoRequest struct {
	Topic         string `json:"topic" binding:"required"`
	CustomScript  string `json:"custom_script"`
	WithSubtitles bool   `json:"with_subtitles"`
	AutoUpload    bool   `json:"auto_upload"`
	Privacy       string `json:"privacy"`
}

// CreateVideo records a one-off video request and queues it for generation.
func (h *Handler) CreateVideo(c *gin.Context) {
	userID := c.GetUint("user_id")
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	privacy := req.Privacy
	if privacy == "" {
		privacy = "private"
	}

	video := models.Video{
		UserID:        userID,
		Topic:         req.Topic,
		Status:        models.VideoStatusPending,
		WithSubtitles: req.WithSubtitles,
		AutoUpload:    req.AutoUpload,
		Privacy:       privacy,
	}
	if req.CustomScript != "" {
		video.Script = req.CustomScript
		video.CustomScript = true
	}

	if err := h.DB.Create(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video"})
		return
	}

	payload, err := tasks.Marshal(tasks.GenerateTaskPayload{VideoID: video.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue video"})
		return
	}
	if err := h.Redis.LPush(c.Request.Context(), tasks.QueueVideoGenerate, payload).Err(); err != nil {
		h.DB.Model(&video).Update("status", models.VideoStatusFailed)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue video"})
		return
	}

	c.JSON(http.StatusAccepted, video)
}

// GetVideo returns one video with its current generation status.
func (h *Handler) GetVideo(c *gin.Context) {
	userID := c.GetUint("user_id")
	videoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video ID"})
		return
	}

	var video models.Video
	if err := h.DB.First(&video, "id = ? AND user_id = ?", videoID, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	c.JSON(http.StatusOK, video)
}

// ListVideos returns all of the user's videos, newest first.
func (h *Handler) ListVideos(c *gin.Context) {
	userID := c.GetUint("user_id")
	var videos []models.Video
	if err := h.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve videos"})
		return
	}

	c.JSON(http.StatusOK, videos)
}

// RetryVideo re-queues a failed video for generation.
func (h *Handler) RetryVideo(c *gin.Context) {
	userID := c.GetUint("user_id")
	videoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video ID"})
		return
	}

	var video models.Video
	if err := h.DB.First(&video, "id = ? AND user_id = ?", videoID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	if video.Status != models.VideoStatusFailed {
		c.JSON(http.StatusConflict, gin.H{"error": "Only failed videos can be retried"})
		return
	}

	h.DB.Model(&video).Updates(map[string]interface{}{
		"status":        models.VideoStatusPending,
		"error_message": "",
	})

	payload, err := tasks.Marshal(tasks.GenerateTaskPayload{VideoID: video.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue video"})
		return
	}
	if err := h.Redis.LPush(c.Request.Context(), tasks.QueueVideoGenerate, payload).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue video"})
		return
	}

	c.JSON(http.StatusAccepted, video)
}
