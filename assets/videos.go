package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

const pexelsBaseURL = "https://api.pexels.com"

// VideoClient searches Pexels for stock video clips.
type VideoClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewVideoClient(apiKey string) *VideoClient {
	return &VideoClient{
		apiKey:  apiKey,
		baseURL: pexelsBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type pexelsVideoFile struct {
	Link     string `json:"link"`
	Quality  string `json:"quality"`
	FileType string `json:"file_type"`
}

type pexelsSearchResponse struct {
	Videos []struct {
		ID         int               `json:"id"`
		URL        string            `json:"url"`
		Duration   float64           `json:"duration"`
		Width      int               `json:"width"`
		Height     int               `json:"height"`
		VideoFiles []pexelsVideoFile `json:"video_files"`
	} `json:"videos"`
}

// Search returns up to perPage video clip candidates for the query.
func (c *VideoClient) Search(ctx context.Context, query string, perPage int) ([]Asset, error) {
	if perPage > 10 {
		perPage = 10
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("orientation", "landscape")
	params.Set("size", "medium")
	params.Set("locale", "en-US")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/videos/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("User-Agent", "video-ai-creator/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.E(apperr.KindAssetSource, "videos.Search",
			fmt.Errorf("network error while searching videos: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return nil, apperr.Errorf(apperr.KindAssetSource, "videos.Search",
			"pexels access denied, check the API key")
	case http.StatusTooManyRequests:
		return nil, apperr.Errorf(apperr.KindAssetSource, "videos.Search",
			"pexels rate limit exceeded")
	default:
		return nil, apperr.Errorf(apperr.KindAssetSource, "videos.Search",
			"pexels API error: %d", resp.StatusCode)
	}

	var data pexelsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.E(apperr.KindAssetSource, "videos.Search", err)
	}

	var out []Asset
	for _, video := range data.Videos {
		best := selectBestQuality(video.VideoFiles)
		if best == nil {
			continue
		}
		out = append(out, Asset{
			ID:          strconv.Itoa(video.ID),
			SourceURL:   video.URL,
			DownloadURL: best.Link,
			Duration:    video.Duration,
			Width:       video.Width,
			Height:      video.Height,
			Quality:     best.Quality,
		})
	}
	return out, nil
}

// selectBestQuality prefers HD over SD over HLS, falling back to the first
// available file.
func selectBestQuality(files []pexelsVideoFile) *pexelsVideoFile {
	for _, quality := range []string{"hd", "sd", "hls"} {
		for i := range files {
			if files[i].Quality == quality {
				return &files[i]
			}
		}
	}
	if len(files) > 0 {
		return &files[0]
	}
	return nil
}
