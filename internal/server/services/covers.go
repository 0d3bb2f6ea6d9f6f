package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/dmitrijs2005/gameshelf/internal/server/config"
	"github.com/dmitrijs2005/gameshelf/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// coverURLTTL bounds how long a presigned cover URL stays usable.
const coverURLTTL = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in, optFns...)
	}
)

// CoverUpload tells the client where to PUT a cover image.
type CoverUpload struct {
	GameID    int64
	Key       string
	URL       string
	ExpiresAt time.Time
}

// CoverService hands out presigned S3 URLs for game cover images.
type CoverService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config
}

func NewCoverService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *CoverService {
	return &CoverService{db: db, repomanager: m, config: cfg}
}

// CoverKey builds a fresh object key for a game's cover.
func CoverKey(gameID int64) string {
	return fmt.Sprintf("covers/%d/%v", gameID, uuid.New())
}

func (s *CoverService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			// MinIO and most self-hosted backends expect bucket-in-path URLs.
			o.UsePathStyle = true
		}
	}), nil
}

func (s *CoverService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

// PresignUpload returns a presigned PUT URL for a new cover of the game.
// Nothing is recorded until the upload is confirmed with ConfirmUpload.
func (s *CoverService) PresignUpload(ctx context.Context, gameID int64) (*CoverUpload, error) {
	if !s.config.CoversEnabled() {
		return nil, common.ErrNotConfigured
	}

	if _, err := s.repomanager.Games(s.db).Get(ctx, gameID); err != nil {
		return nil, notFoundOrStore(err)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: s3 config: %v", common.ErrInternal, err)
	}

	bucket := s.config.S3Bucket
	key := CoverKey(gameID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(coverURLTTL))
	if err != nil {
		return nil, fmt.Errorf("%w: presign put: %v", common.ErrInternal, err)
	}

	return &CoverUpload{
		GameID:    gameID,
		Key:       key,
		URL:       req.URL,
		ExpiresAt: time.Now().Add(coverURLTTL),
	}, nil
}

// ConfirmUpload makes key the game's cover once the object is in the bucket.
// The key must be one PresignUpload could have issued for this game; a key
// whose object was never uploaded is common.ErrNotFound.
func (s *CoverService) ConfirmUpload(ctx context.Context, gameID int64, key string) error {
	if !s.config.CoversEnabled() {
		return common.ErrNotConfigured
	}
	if !isCoverKeyFor(gameID, key) {
		return fmt.Errorf("%w: foreign cover key", common.ErrInvalidInput)
	}

	games := s.repomanager.Games(s.db)
	if _, err := games.Get(ctx, gameID); err != nil {
		return notFoundOrStore(err)
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return fmt.Errorf("%w: s3 config: %v", common.ErrInternal, err)
	}

	bucket := s.config.S3Bucket
	if _, err := headObject(client, ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: head object: %v", common.ErrStoreUnavailable, err)
	}

	if err := games.SetCoverKey(ctx, gameID, key); err != nil {
		return notFoundOrStore(err)
	}
	return nil
}

// isCoverKeyFor reports whether key has the covers/<gameID>/<uuid> shape.
func isCoverKeyFor(gameID int64, key string) bool {
	rest, ok := strings.CutPrefix(key, fmt.Sprintf("covers/%d/", gameID))
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

// PresignDownload returns a presigned GET URL for an object key.
func (s *CoverService) PresignDownload(ctx context.Context, key string) (string, error) {
	if !s.config.CoversEnabled() {
		return "", common.ErrNotConfigured
	}
	if key == "" {
		return "", common.ErrNotFound
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: s3 config: %v", common.ErrInternal, err)
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(coverURLTTL))
	if err != nil {
		return "", fmt.Errorf("%w: presign get: %v", common.ErrInternal, err)
	}

	return req.URL, nil
}

// GameCoverURL returns a presigned GET URL for the game's current cover.
func (s *CoverService) GameCoverURL(ctx context.Context, gameID int64) (string, error) {
	if !s.config.CoversEnabled() {
		return "", common.ErrNotConfigured
	}

	game, err := s.repomanager.Games(s.db).Get(ctx, gameID)
	if err != nil {
		return "", notFoundOrStore(err)
	}
	if game.CoverKey == nil {
		return "", common.ErrNotFound
	}
	return s.PresignDownload(ctx, *game.CoverKey)
}
