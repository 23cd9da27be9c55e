package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kojish2018/video-ai-creator/internal/config"
	"github.com/kojish2018/video-ai-creator/internal/platform"
	"github.com/kojish2018/video-ai-creator/tasks"
	"github.com/kojish2018/video-ai-creator/worker"
)

func main() {
	cfg := config.Load()

	db := platform.NewDBConnection(cfg)
	rdb := platform.NewRedisClient(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop cleanly on SIGINT/SIGTERM so a running render is not orphaned
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received")
		cancel()
	}()

	p := worker.NewProcessor(db, rdb, cfg)
	p.Register(tasks.QueueVideoGenerate, p.HandleGenerateVideo)
	p.Register(tasks.QueueVideoUpload, p.HandleUploadVideo)

	log.Println("Worker started, waiting for queue tasks...")
	p.Listen(ctx, tasks.QueueVideoGenerate, tasks.QueueVideoUpload)
}
