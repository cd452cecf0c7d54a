package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var s3Client *s3.Client

// InitS3 prepares the client for photo archival. Archival is optional:
// without S3_BUCKET the analyze endpoint simply skips it.
func InitS3() {
	if os.Getenv("S3_BUCKET") == "" {
		log.Println("S3_BUCKET not set, photo archival disabled")
		return
	}
	region := os.Getenv("S3_REGION")
	if region == "" {
		region = os.Getenv("AWS_REGION") // fallback
	}
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		log.Printf("unable to load AWS config for S3, photo archival disabled: %v", err)
		return
	}
	s3Client = s3.NewFromConfig(cfg)
}

// S3Enabled reports whether photo archival is configured.
func S3Enabled() bool { return s3Client != nil }

// ArchiveBase64Image stores an analyzed food photo under a timestamped key
// and returns that key. Accepts raw base64 or a full data URI; content type
// defaults to JPEG, which is what the camera capture produces.
func ArchiveBase64Image(ctx context.Context, base64Data, keyPrefix string) (string, error) {
	if s3Client == nil {
		return "", fmt.Errorf("s3 not configured")
	}

	contentType := "image/jpeg"
	data := base64Data
	if strings.HasPrefix(base64Data, "data:") {
		parts := strings.SplitN(base64Data, ",", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("invalid base64 image")
		}
		mediaType := strings.TrimPrefix(parts[0], "data:")
		contentType = strings.SplitN(mediaType, ";", 2)[0]
		data = parts[1]
	}

	imageData, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %v", err)
	}

	key := fmt.Sprintf("%s/%s.jpg", keyPrefix, time.Now().UTC().Format("20060102-150405.000000000"))

	_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(os.Getenv("S3_BUCKET")),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}
	return key, nil
}
