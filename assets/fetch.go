package assets

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

// Validation thresholds. Assets below these are skipped with a warning.
const (
	minImageWidth    = 800
	minImageHeight   = 600
	minImageBytes    = 10_000
	minVideoWidth    = 640
	minVideoHeight   = 360
	minVideoBytes    = 100_000
	maxVideoBytes    = 100 * 1024 * 1024
	minClipDuration  = 5.0
	maxClipDuration  = 120.0
	minAspectRatio   = 0.5
	maxAspectRatio   = 3.0
	downloadParallel = 4
)

// Fetcher searches, downloads and validates visual assets into a per-run
// directory. Search-rank order is preserved even though downloads run in
// parallel.
type Fetcher struct {
	images *ImageClient
	videos *VideoClient
	http   *http.Client
}

func NewFetcher(images *ImageClient, videos *VideoClient) *Fetcher {
	return &Fetcher{
		images: images,
		videos: videos,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchImages collects up to count validated images for the search terms,
// falling back to a broad query when the terms come up short.
func (f *Fetcher) FetchImages(ctx context.Context, terms []string, count int, destDir string) ([]Asset, error) {
	candidates, err := f.collect(ctx, terms, count, func(ctx context.Context, q string, n int) ([]Asset, error) {
		return f.images.Search(ctx, q, n)
	})
	if err != nil {
		return nil, err
	}

	downloaded := f.download(ctx, candidates, destDir, "image", ".jpg", f.validateImage)
	if len(downloaded) == 0 {
		return nil, apperr.Errorf(apperr.KindNoValidAssets, "assets.FetchImages",
			"no valid images could be downloaded")
	}
	return downloaded, nil
}

// FetchVideos collects up to count validated video clips for the search terms.
func (f *Fetcher) FetchVideos(ctx context.Context, terms []string, count int, destDir string) ([]Asset, error) {
	candidates, err := f.collect(ctx, terms, count, func(ctx context.Context, q string, n int) ([]Asset, error) {
		return f.videos.Search(ctx, q, n)
	})
	if err != nil {
		return nil, err
	}

	downloaded := f.download(ctx, candidates, destDir, "video", ".mp4", f.validateVideo)
	if len(downloaded) == 0 {
		return nil, apperr.Errorf(apperr.KindNoValidAssets, "assets.FetchVideos",
			"no valid videos could be downloaded")
	}
	return downloaded, nil
}

type searchFunc func(ctx context.Context, query string, n int) ([]Asset, error)

func (f *Fetcher) collect(ctx context.Context, terms []string, count int, search searchFunc) ([]Asset, error) {
	terms = NormalizeTerms(terms)

	var candidates []Asset
	for _, term := range terms {
		if len(candidates) >= count {
			break
		}
		found, err := search(ctx, term, count-len(candidates))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}

	if len(candidates) < count {
		found, err := search(ctx, fallbackQuery, count)
		if err == nil {
			for _, a := range found {
				if len(candidates) >= count {
					break
				}
				candidates = append(candidates, a)
			}
		} else {
			log.Printf("[assets] fallback search failed: %v", err)
		}
	}

	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates, nil
}

// download fetches candidates in parallel but keeps search-rank order in the
// returned slice. Invalid downloads are deleted and skipped.
func (f *Fetcher) download(ctx context.Context, candidates []Asset, destDir, prefix, ext string,
	validate func(path string, a *Asset) error) []Asset {

	results := make([]*Asset, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadParallel)

	for i := range candidates {
		i := i
		g.Go(func() error {
			a := candidates[i]
			filename := fmt.Sprintf("%s_%d_%s%s", prefix, i+1, a.ID, ext)
			path := filepath.Join(destDir, filename)

			if err := f.downloadFile(gctx, a.DownloadURL, path); err != nil {
				log.Printf("[assets] warning: failed to download %s %d: %v", prefix, i+1, err)
				return nil
			}
			if err := validate(path, &a); err != nil {
				log.Printf("[assets] warning: rejected %s %d: %v", prefix, i+1, err)
				os.Remove(path)
				return nil
			}
			a.LocalPath = path
			results[i] = &a
			return nil
		})
	}
	g.Wait()

	var out []Asset
	for _, a := range results {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}

func (f *Fetcher) downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func (f *Fetcher) validateImage(path string, a *Asset) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() < minImageBytes {
		return fmt.Errorf("file too small: %d bytes", info.Size())
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return fmt.Errorf("undecodable image: %w", err)
	}
	switch format {
	case "jpeg", "png", "webp":
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	if cfg.Width < minImageWidth || cfg.Height < minImageHeight {
		return fmt.Errorf("too small: %dx%d", cfg.Width, cfg.Height)
	}
	ratio := float64(cfg.Width) / float64(cfg.Height)
	if ratio < minAspectRatio || ratio > maxAspectRatio {
		return fmt.Errorf("aspect ratio %.2f outside acceptable band", ratio)
	}

	a.Width = cfg.Width
	a.Height = cfg.Height
	a.FileSize = info.Size()
	return nil
}

func (f *Fetcher) validateVideo(path string, a *Asset) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() < minVideoBytes {
		return fmt.Errorf("file too small: %d bytes", info.Size())
	}
	if info.Size() > maxVideoBytes {
		return fmt.Errorf("file too large: %d bytes", info.Size())
	}

	if a.Width < minVideoWidth || a.Height < minVideoHeight {
		return fmt.Errorf("resolution too low: %dx%d", a.Width, a.Height)
	}
	if a.Duration < minClipDuration || a.Duration > maxClipDuration {
		return fmt.Errorf("duration %.1fs outside %v-%vs window", a.Duration, minClipDuration, maxClipDuration)
	}

	a.FileSize = info.Size()
	return nil
}
