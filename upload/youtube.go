package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

const (
	maxTitleLength = 100

	// YouTube category 27 is Education.
	categoryEducation = "27"
)

// Metadata is the publish surface for one uploaded video.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// Request carries everything needed to publish a rendered video.
type Request struct {
	VideoPath     string
	ThumbnailPath string
	Metadata      Metadata
}

// Uploader publishes videos to YouTube using a stored OAuth token.
type Uploader struct {
	clientID     string
	clientSecret string
	tokenFile    string
}

func NewUploader(clientID, clientSecret, tokenFile string) *Uploader {
	return &Uploader{clientID: clientID, clientSecret: clientSecret, tokenFile: tokenFile}
}

// BuildMetadata derives the publish metadata from the generated script.
func BuildMetadata(topic, title, script, privacy string, keywords []string) Metadata {
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("%sについて - 30秒で学ぶ", topic)
	}
	if runes := []rune(title); len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength-3]) + "..."
	}

	firstSentence := script
	if i := strings.IndexRune(script, '。'); i >= 0 {
		firstSentence = script[:i+len("。")]
	}

	description := strings.TrimSpace(fmt.Sprintf(`%s

このチャンネルでは、様々なトピックについて30秒の短時間で学べる動画を配信しています。

🎯 テーマ: %s
📚 カテゴリ: 教育・学習

#教育 #学習 #30秒 #%s`,
		firstSentence, topic, strings.ReplaceAll(topic, " ", "")))

	tags := append([]string{"教育", "学習", "30秒", topic}, keywords...)

	if privacy == "" {
		privacy = "private"
	}
	return Metadata{
		Title:       title,
		Description: description,
		Tags:        tags,
		CategoryID:  categoryEducation,
		Privacy:     privacy,
	}
}

// Upload publishes the video and, when a thumbnail is supplied, sets it.
// Returns the public watch URL.
func (u *Uploader) Upload(ctx context.Context, req Request) (string, error) {
	const op = "upload.Upload"

	svc, err := u.service(ctx)
	if err != nil {
		return "", err
	}

	f, err := os.Open(req.VideoPath)
	if err != nil {
		return "", apperr.Errorf(apperr.KindUpload, op, "cannot open video: %v", err)
	}
	defer f.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Metadata.Title,
			Description: req.Metadata.Description,
			Tags:        req.Metadata.Tags,
			CategoryId:  req.Metadata.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           req.Metadata.Privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	log.Printf("[upload] uploading %s (privacy=%s)", req.VideoPath, req.Metadata.Privacy)

	inserted, err := svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return "", apperr.Errorf(apperr.KindUpload, op, "video insert failed: %v", err)
	}

	if req.ThumbnailPath != "" {
		if err := u.setThumbnail(ctx, svc, inserted.Id, req.ThumbnailPath); err != nil {
			// the video is live, a thumbnail failure is not fatal
			log.Printf("[upload] warning: thumbnail set failed: %v", err)
		}
	}

	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", inserted.Id), nil
}

func (u *Uploader) setThumbnail(ctx context.Context, svc *youtube.Service, videoID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open thumbnail: %w", err)
	}
	defer f.Close()

	_, err = svc.Thumbnails.Set(videoID).Media(f).Context(ctx).Do()
	return err
}

// service builds an authenticated YouTube client from the stored token. The
// token must have been issued beforehand with the upload scope; interactive
// consent is out of scope for the worker.
func (u *Uploader) service(ctx context.Context) (*youtube.Service, error) {
	const op = "upload.service"

	if u.clientID == "" || u.clientSecret == "" {
		return nil, apperr.Errorf(apperr.KindConfig, op, "YouTube OAuth client is not configured")
	}

	tok, err := u.loadToken()
	if err != nil {
		return nil, apperr.Errorf(apperr.KindUpload, op, "stored token unusable: %v", err)
	}

	conf := &oauth2.Config{
		ClientID:     u.clientID,
		ClientSecret: u.clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}

	svc, err := youtube.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, tok)))
	if err != nil {
		return nil, apperr.Errorf(apperr.KindUpload, op, "youtube client init failed: %v", err)
	}
	return svc, nil
}

func (u *Uploader) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(u.tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read token file %s: %w", u.tokenFile, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", u.tokenFile, err)
	}
	return &tok, nil
}
