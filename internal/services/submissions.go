package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/recipekeeper/internal/blobstore"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/submissions"
)

const genericContentType = "application/octet-stream"

// maxParallelUploads bounds the attachment writes of one contribution.
const maxParallelUploads = 4

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// Upload is an uploaded file waiting to be stored as an attachment.
type Upload struct {
	Kind        models.MediaKind
	Name        string
	ContentType string
	Data        []byte
}

// SubmissionService stores attachments and appends submissions to the ledger.
type SubmissionService struct {
	repo   submissions.Repository
	blobs  blobstore.Store
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

func NewSubmissionService(repo submissions.Repository, blobs blobstore.Store, logger logging.Logger) *SubmissionService {
	return &SubmissionService{
		repo:   repo,
		blobs:  blobs,
		logger: logger.With("service", "submissions"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// StoreAttachment writes data under a fresh "<kind>/<id><ext>" key, keeping
// the extension of declaredName. An existing object is never replaced; a
// collision surfaces as common.ErrorStorageWrite.
func (s *SubmissionService) StoreAttachment(ctx context.Context, data []byte, declaredName, contentType string, kind models.MediaKind) (models.Attachment, error) {
	if _, err := models.ParseMediaKind(string(kind)); err != nil {
		return models.Attachment{}, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	name := baseName(declaredName)
	ref := string(kind) + "/" + s.newID() + extension(name)

	contentType = strings.TrimSpace(contentType)
	if contentType == "" || contentType == genericContentType {
		contentType = mimetype.Detect(data).String()
	}

	if err := s.blobs.Put(ctx, ref, data, contentType); err != nil {
		s.logger.Error(ctx, "attachment write failed", "ref", ref, "error", err)
		return models.Attachment{}, fmt.Errorf("store attachment: %w", err)
	}

	s.logger.Debug(ctx, "attachment stored", "ref", ref, "size", len(data), "content_type", contentType)
	return models.Attachment{
		Kind:         kind,
		Ref:          ref,
		ContentType:  contentType,
		OriginalName: name,
		Size:         int64(len(data)),
	}, nil
}

// CreateSubmission appends a new record referencing already stored
// attachments and returns its id. Empty fields get placeholders and an empty
// submittedBy becomes models.AnonymousUser.
func (s *SubmissionService) CreateSubmission(ctx context.Context, fields models.Fields, attachments []models.Attachment, submittedBy string) (string, error) {
	sub := &models.Submission{
		ID:          s.newID(),
		Fields:      fields.WithDefaults(),
		SubmittedBy: strings.TrimSpace(submittedBy),
		CreatedAt:   s.now().UTC(),
	}
	if sub.SubmittedBy == "" {
		sub.SubmittedBy = models.AnonymousUser
	}

	for _, a := range attachments {
		if err := checkAttachment(a); err != nil {
			return "", err
		}
		if err := sub.Attachments.Add(a); err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
	}

	if err := s.repo.Append(ctx, sub); err != nil {
		s.logger.Error(ctx, "submission append failed", "id", sub.ID, "error", err)
		return "", fmt.Errorf("append submission: %w", err)
	}

	s.logger.Info(ctx, "submission created",
		"id", sub.ID, "submitted_by", sub.SubmittedBy, "attachments", len(attachments))
	return sub.ID, nil
}

// Contribute stores every upload and then appends the submission. The ledger
// entry is written only after all attachment writes succeeded; attachments
// of a failed contribution stay unreferenced.
func (s *SubmissionService) Contribute(ctx context.Context, fields models.Fields, uploads []Upload, submittedBy string) (string, error) {
	stored := make([]models.Attachment, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for i, u := range uploads {
		g.Go(func() error {
			a, err := s.StoreAttachment(gctx, u.Data, u.Name, u.ContentType, u.Kind)
			if err != nil {
				return err
			}
			stored[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return s.CreateSubmission(ctx, fields, stored, submittedBy)
}

// ListSubmissions returns all submissions, newest first.
func (s *SubmissionService) ListSubmissions(ctx context.Context) ([]*models.Submission, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// Search filters the newest-first listing with f.
func (s *SubmissionService) Search(ctx context.Context, f models.SearchFilter) ([]*models.Submission, error) {
	subs, err := s.ListSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return subs, nil
	}
	return f.Apply(subs), nil
}

// GetSubmission returns the submission with id or common.ErrorNotFound.
func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get submission %s: %w", id, err)
	}
	return sub, nil
}

// OpenAttachment returns the stored bytes of ref.
func (s *SubmissionService) OpenAttachment(ctx context.Context, ref string) ([]byte, error) {
	if err := blobstore.ValidateKey(ref); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if _, err := models.ParseMediaKind(path.Dir(ref)); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	data, err := s.blobs.Get(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("open attachment %s: %w", ref, err)
	}
	return data, nil
}

// AttachmentContent returns the bytes stored under ref together with the
// media type declared for it. Content no submission references is sniffed.
func (s *SubmissionService) AttachmentContent(ctx context.Context, ref string) ([]byte, string, error) {
	data, err := s.OpenAttachment(ctx, ref)
	if err != nil {
		return nil, "", err
	}

	a, ok, err := s.findAttachment(ctx, ref)
	if err != nil {
		return nil, "", err
	}

	ct := ""
	if ok {
		ct = a.ContentType
	}
	if ct == "" {
		ct = mimetype.Detect(data).String()
	}
	return data, ct, nil
}

// findAttachment scans the ledger for the attachment stored under ref.
func (s *SubmissionService) findAttachment(ctx context.Context, ref string) (models.Attachment, bool, error) {
	subs, err := s.ListSubmissions(ctx)
	if err != nil {
		return models.Attachment{}, false, err
	}
	for _, sub := range subs {
		for _, a := range sub.Attachments.All() {
			if a.Ref == ref {
				return a, true, nil
			}
		}
	}
	return models.Attachment{}, false, nil
}

// AttachmentDataURL renders an attachment inline as a base64 data URL.
func (s *SubmissionService) AttachmentDataURL(ctx context.Context, a models.Attachment) (string, error) {
	data, err := s.OpenAttachment(ctx, a.Ref)
	if err != nil {
		return "", err
	}
	ct := a.ContentType
	if ct == "" {
		ct = mimetype.Detect(data).String()
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func checkAttachment(a models.Attachment) error {
	if err := blobstore.ValidateKey(a.Ref); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if path.Dir(a.Ref) != string(a.Kind) {
		return fmt.Errorf("%w: attachment %s is not of kind %s", common.ErrorValidation, a.Ref, a.Kind)
	}
	return nil
}

func baseName(declared string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(declared), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func extension(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}
