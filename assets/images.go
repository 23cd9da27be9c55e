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

const unsplashBaseURL = "https://api.unsplash.com"

// ImageClient searches Unsplash for still images.
type ImageClient struct {
	accessKey string
	baseURL   string
	http      *http.Client
}

func NewImageClient(accessKey string) *ImageClient {
	return &ImageClient{
		accessKey: accessKey,
		baseURL:   unsplashBaseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

type unsplashSearchResponse struct {
	Results []struct {
		ID             string `json:"id"`
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
		Width          int    `json:"width"`
		Height         int    `json:"height"`
		URLs           struct {
			Regular string `json:"regular"`
			Full    string `json:"full"`
		} `json:"urls"`
	} `json:"results"`
}

// Search returns up to perPage image candidates for the query. Candidates are
// not downloaded yet.
func (c *ImageClient) Search(ctx context.Context, query string, perPage int) ([]Asset, error) {
	if perPage > 10 {
		perPage = 10 // Unsplash demo limit
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("orientation", "landscape")
	params.Set("content_filter", "high")
	params.Set("order_by", "relevant")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("User-Agent", "video-ai-creator/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.E(apperr.KindAssetSource, "images.Search",
			fmt.Errorf("network error while searching images: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return nil, apperr.Errorf(apperr.KindAssetSource, "images.Search",
			"unsplash access denied, check the access key")
	case http.StatusTooManyRequests:
		return nil, apperr.Errorf(apperr.KindAssetSource, "images.Search",
			"unsplash rate limit exceeded")
	default:
		return nil, apperr.Errorf(apperr.KindAssetSource, "images.Search",
			"unsplash API error: %d", resp.StatusCode)
	}

	var data unsplashSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.E(apperr.KindAssetSource, "images.Search", err)
	}

	var out []Asset
	for _, photo := range data.Results {
		if photo.URLs.Regular == "" {
			continue
		}
		downloadURL := photo.URLs.Full
		if downloadURL == "" {
			downloadURL = photo.URLs.Regular
		}
		desc := photo.Description
		if desc == "" {
			desc = photo.AltDescription
		}
		out = append(out, Asset{
			ID:          photo.ID,
			SourceURL:   photo.URLs.Regular,
			DownloadURL: downloadURL,
			Width:       photo.Width,
			Height:      photo.Height,
			Description: desc,
		})
	}
	return out, nil
}
