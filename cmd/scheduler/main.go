package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/kojish2018/video-ai-creator/internal/config"
	"github.com/kojish2018/video-ai-creator/internal/platform"
	"github.com/kojish2018/video-ai-creator/models"
	"github.com/kojish2018/video-ai-creator/tasks"
)

// Message for scheduling daily jobs
type SeriesCreatedMessage struct {
	SeriesID    uint `json:"series_id"`
	PostsPerDay int  `json:"posts_per_day"`
}

const seriesCreatedChannel = "series_created"

func main() {
	cfg := config.Load()

	db := platform.NewDBConnection(cfg)
	rdb := platform.NewRedisClient(cfg)
	ctx := context.Background()

	c := cron.New()
	c.Start()
	defer c.Stop()

	// Schedule every active series that already exists, then listen for
	// new ones.
	var existing []models.Series
	if err := db.Where("is_active = ?", true).Find(&existing).Error; err != nil {
		log.Fatalf("Failed to load existing series: %v", err)
	}
	for _, s := range existing {
		scheduleSeries(ctx, db, rdb, c, s.ID)
	}
	log.Printf("Scheduled %d existing series", len(existing))

	go listenForNewSeries(ctx, db, rdb, c)

	log.Println("Scheduler started, waiting for messages...")
	select {}
}

// listenForNewSeries subscribes to `series_created` and adds cron jobs.
// This uses Pub/Sub, so you should only run one instance of this service
// to avoid scheduling duplicate cron jobs.
func listenForNewSeries(ctx context.Context, db *gorm.DB, rdb *redis.Client, c *cron.Cron) {
	pubsub := rdb.Subscribe(ctx, seriesCreatedChannel)
	defer pubsub.Close()
	ch := pubsub.Channel()

	log.Println("Scheduler listening for new series...")

	for msg := range ch {
		var message SeriesCreatedMessage
		if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
			log.Printf("Error unmarshalling %s message: %v", seriesCreatedChannel, err)
			continue
		}

		log.Printf("Received new series %d, scheduling %d posts per day", message.SeriesID, message.PostsPerDay)
		scheduleSeries(ctx, db, rdb, c, message.SeriesID)
	}
}

// scheduleSeries adds a daily cron job for the series. Each run creates the
// series' quota of pending videos and queues them for generation, rotating
// through the topic list.
func scheduleSeries(ctx context.Context, db *gorm.DB, rdb *redis.Client, c *cron.Cron, seriesID uint) {
	_, err := c.AddFunc("@daily", func() {
		var series models.Series
		if err := db.First(&series, seriesID).Error; err != nil {
			log.Printf("Series %d not found, skipping run: %v", seriesID, err)
			return
		}
		if !series.IsActive {
			return
		}

		var topics []string
		if len(series.Topics) > 0 {
			if err := json.Unmarshal(series.Topics, &topics); err != nil {
				log.Printf("Series %d has unreadable topics: %v", seriesID, err)
				return
			}
		}
		if len(topics) == 0 {
			log.Printf("Series %d has no topics, skipping run", seriesID)
			return
		}

		var produced int64
		db.Model(&models.Video{}).Where("series_id = ?", seriesID).Count(&produced)

		log.Printf("Running daily job for series %d: queuing %d videos", seriesID, series.PostsPerDay)
		for i := 0; i < series.PostsPerDay; i++ {
			topic := topics[(int(produced)+i)%len(topics)]

			video := models.Video{
				UserID:        series.UserID,
				SeriesID:      &series.ID,
				Topic:         topic,
				Status:        models.VideoStatusPending,
				WithSubtitles: series.WithSubtitles,
				AutoUpload:    series.AutoUpload,
				Privacy:       series.Privacy,
			}
			if err := db.Create(&video).Error; err != nil {
				log.Printf("Error creating daily pending video record: %v", err)
				continue
			}

			payload, err := tasks.Marshal(tasks.GenerateTaskPayload{VideoID: video.ID})
			if err != nil {
				log.Printf("Error marshalling daily video task: %v", err)
				continue
			}

			if err := rdb.LPush(ctx, tasks.QueueVideoGenerate, payload).Err(); err != nil {
				log.Printf("Error pushing daily task to queue %s: %v", tasks.QueueVideoGenerate, err)
			}
		}
	})
	if err != nil {
		log.Printf("Error scheduling cron job for series %d: %v", seriesID, err)
	}
}
