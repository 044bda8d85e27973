package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// visionMaxPages is the number of PDF pages sent inline to Vision
const visionMaxPages = 5

// VisionOCR runs Cloud Vision document text detection on inline content
type VisionOCR struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionOCR opens a Vision client. An empty credentialsFile uses
// application default credentials.
func NewVisionOCR(ctx context.Context, credentialsFile string) (*VisionOCR, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &VisionOCR{client: client}, nil
}

func (v *VisionOCR) Close() error {
	return v.client.Close()
}

func (v *VisionOCR) ExtractTextOCR(ctx context.Context, data []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	features := []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}}
	m := baseMimeType(mimeType)

	var (
		text string
		err  error
	)
	switch {
	case m == MimePDF:
		pages := make([]int32, visionMaxPages)
		for i := range pages {
			pages[i] = int32(i + 1)
		}
		resp, callErr := v.client.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
			Requests: []*visionpb.AnnotateFileRequest{{
				InputConfig: &visionpb.InputConfig{Content: data, MimeType: MimePDF},
				Features:    features,
				Pages:       pages,
			}},
		})
		if callErr != nil {
			return "", fmt.Errorf("%w: vision BatchAnnotateFiles: %v", ErrExtraction, callErr)
		}
		text, err = fileResponseText(resp)
	case strings.HasPrefix(m, "image/"):
		resp, callErr := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
			Requests: []*visionpb.AnnotateImageRequest{{
				Image:    &visionpb.Image{Content: data},
				Features: features,
			}},
		})
		if callErr != nil {
			return "", fmt.Errorf("%w: vision BatchAnnotateImages: %v", ErrExtraction, callErr)
		}
		text, err = imageResponsesText(resp.GetResponses())
	default:
		return "", fmt.Errorf("%w: %w: %s", ErrExtraction, ErrUnsupportedFormat, mimeType)
	}
	if err != nil {
		return "", err
	}
	return sufficientText(text)
}

func fileResponseText(resp *visionpb.BatchAnnotateFilesResponse) (string, error) {
	var pages []string
	for _, fr := range resp.GetResponses() {
		if fr.GetError().GetMessage() != "" {
			return "", fmt.Errorf("%w: vision annotate error: %s", ErrExtraction, fr.GetError().GetMessage())
		}
		text, err := imageResponsesText(fr.GetResponses())
		if err != nil {
			return "", err
		}
		if text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

func imageResponsesText(responses []*visionpb.AnnotateImageResponse) (string, error) {
	var parts []string
	for _, r := range responses {
		if r.GetError().GetMessage() != "" {
			return "", fmt.Errorf("%w: vision annotate error: %s", ErrExtraction, r.GetError().GetMessage())
		}
		if t := strings.TrimSpace(r.GetFullTextAnnotation().GetText()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
