package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kojish2018/video-ai-creator/internal/config"
	"github.com/kojish2018/video-ai-creator/pipeline"
)

func main() {
	topic := flag.String("topic", "", "video topic")
	output := flag.String("output", "", "output video file name (auto-generated when empty)")
	scriptFile := flag.String("custom-script", "", "path to a custom narration script file")
	subtitles := flag.Bool("subtitles", false, "burn subtitles into the video")
	thumb := flag.Bool("thumbnail", false, "render a thumbnail image")
	doUpload := flag.Bool("upload", false, "upload the result to YouTube")
	privacy := flag.String("privacy", "private", "YouTube privacy status (private, unlisted, public)")
	testConfig := flag.Bool("test-config", false, "validate configuration and exit")
	flag.Parse()

	cfg := config.Load()

	if *testConfig {
		if err := cfg.Validate(); err != nil {
			fmt.Printf("Configuration invalid:\n%v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration OK")
		return
	}

	var customScript string
	if *scriptFile != "" {
		data, err := os.ReadFile(*scriptFile)
		if err != nil {
			log.Fatalf("Cannot read script file: %v", err)
		}
		customScript = strings.TrimSpace(string(data))
	}

	ctx := context.Background()

	if *topic == "" {
		runInteractive(ctx, cfg)
		return
	}

	opts := pipeline.Options{
		OutputName:    *output,
		CustomScript:  customScript,
		WithSubtitles: *subtitles,
		WithThumbnail: *thumb,
		Upload:        *doUpload,
		Privacy:       *privacy,
	}
	if err := runOnce(ctx, cfg, *topic, opts); err != nil {
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, cfg *config.Config, topic string, opts pipeline.Options) error {
	progress := func(stage string, percent int, message string) {
		fmt.Printf("[%3d%%] %-20s %s\n", percent, stage, message)
	}

	result, err := pipeline.NewDefault(cfg, progress).Run(ctx, topic, opts)
	printResult(result, err)
	return err
}

func runInteractive(ctx context.Context, cfg *config.Config) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("  Automated video generator")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Topic (or 'quit' to exit): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		topic := strings.TrimSpace(line)
		if topic == "" {
			continue
		}
		if topic == "quit" || topic == "exit" {
			return
		}

		fmt.Print("Output file name (empty for auto): ")
		line, _ = reader.ReadString('\n')
		output := strings.TrimSpace(line)

		_ = runOnce(ctx, cfg, topic, pipeline.Options{OutputName: output})

		fmt.Print("Generate another video? (y/N): ")
		line, _ = reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(line)) != "y" {
			return
		}
	}
}

func printResult(result *pipeline.Result, err error) {
	fmt.Println(strings.Repeat("=", 60))
	if err == nil && result.Success {
		fmt.Println("Video generated successfully")
		fmt.Printf("  Output:   %s\n", result.VideoPath)
		fmt.Printf("  Duration: %.2fs\n", result.Duration)
		fmt.Printf("  Elapsed:  %s\n", result.Elapsed.Round(100*time.Millisecond))
		if result.SubtitlePath != "" {
			fmt.Printf("  Subtitles: %s\n", result.SubtitlePath)
		}
		if result.ThumbnailPath != "" {
			fmt.Printf("  Thumbnail: %s\n", result.ThumbnailPath)
		}
		if result.UploadURL != "" {
			fmt.Printf("  Published: %s\n", result.UploadURL)
		}
		for _, e := range result.Errors {
			fmt.Printf("  Warning: %s\n", e)
		}
	} else {
		fmt.Println("Video generation failed")
		if result != nil {
			for _, e := range result.Errors {
				fmt.Printf("  Error: %s\n", e)
			}
		}
	}
	fmt.Println(strings.Repeat("=", 60))
}
