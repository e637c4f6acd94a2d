package photo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	domainPhoto "site-report-backend/internal/domain/photo"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

const DefaultMaxBytes int64 = 10 << 20

var ErrInvalidAnnotation = errors.New("invalid annotation")

type Usecase struct {
	photos    domainPhoto.Repository
	uow       uow.UnitOfWork
	uploadDir string
	maxBytes  int64
	validate  *validator.Validate
	log       *logger.Logger
}

func NewUsecase(photos domainPhoto.Repository, tx uow.UnitOfWork, uploadDir string, maxBytes int64, log *logger.Logger) *Usecase {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Usecase{
		photos:    photos,
		uow:       tx,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		validate:  validator.New(),
		log:       log,
	}
}

// NormalizeContentType resolves the type to store. Empty and generic
// declarations are sniffed from the bytes; only JPEG and PNG are accepted.
func NormalizeContentType(declared string, b []byte) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(declared))
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		ct = mt
	}
	if ct == "" || ct == "application/octet-stream" {
		ct = mimetype.Detect(b).String()
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			ct = mt
		}
	}
	switch ct {
	case domainPhoto.ContentTypeJPEG, "image/jpg", "image/pjpeg":
		return domainPhoto.ContentTypeJPEG, nil
	case domainPhoto.ContentTypePNG:
		return domainPhoto.ContentTypePNG, nil
	}
	return "", fmt.Errorf("%w: %q", domainPhoto.ErrUnsupportedMedia, ct)
}

// Put stores the bytes in the database and appends the photo at the end of
// the report's ordering.
func (u *Usecase) Put(ctx context.Context, in PutInput) (*PhotoDTO, error) {
	ct, err := NormalizeContentType(in.ContentType, in.Bytes)
	if err != nil {
		return nil, err
	}
	if int64(len(in.Bytes)) > u.maxBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", domainPhoto.ErrPhotoTooLarge, len(in.Bytes), u.maxBytes)
	}
	kind := kindOf(in.Kind)

	var dto *PhotoDTO
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := ensureEditable(ctx, r, kind, in.ReportID); err != nil {
			return err
		}
		ord, err := r.Photos.NextOrdinal(ctx, kind, in.ReportID)
		if err != nil {
			return err
		}
		p := &domainPhoto.Photo{
			ReportID:    in.ReportID,
			Ordinal:     ord,
			Caption:     in.Caption,
			Category:    in.Category,
			Location:    in.Location,
			Filename:    storedName(in.Filename),
			Image:       in.Bytes,
			ImageHash:   domainPhoto.Hash(in.Bytes),
			ContentType: ct,
			SizeBytes:   int64(len(in.Bytes)),
		}
		if err := r.Photos.Create(ctx, kind, p); err != nil {
			return err
		}
		dto = ToDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("photo stored", "report_id", in.ReportID, "photo_id", dto.ID, "size_bytes", dto.SizeBytes, "kind", kind)
	return dto, nil
}

// Get returns the stored bytes. Rows persisted before blobs existed are read
// from the upload directory; a miss there is ErrPhotoMissing.
func (u *Usecase) Get(ctx context.Context, kind domainPhoto.Kind, id uint64) (*Blob, error) {
	p, err := u.photos.GetByID(ctx, kindOf(kind), id)
	if err != nil {
		return nil, err
	}
	return u.blob(p)
}

func (u *Usecase) blob(p *domainPhoto.Photo) (*Blob, error) {
	if p.HasBytes() {
		return &Blob{Bytes: p.Image, ContentType: p.ContentType, Filename: p.Filename}, nil
	}
	name := filepath.Base(p.Filename)
	if u.uploadDir == "" || p.Filename == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: photo %d has no bytes", domainPhoto.ErrPhotoMissing, p.ID)
	}
	b, err := os.ReadFile(filepath.Join(u.uploadDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: photo %d: %v", domainPhoto.ErrPhotoMissing, p.ID, err)
	}
	ct := p.ContentType
	if ct == "" {
		ct = mimetype.Detect(b).String()
	}
	return &Blob{Bytes: b, ContentType: ct, Filename: name}, nil
}

func (u *Usecase) List(ctx context.Context, kind domainPhoto.Kind, reportID uint64) ([]PhotoDTO, error) {
	list, err := u.photos.ListByReport(ctx, kindOf(kind), reportID)
	if err != nil {
		return nil, err
	}
	out := make([]PhotoDTO, 0, len(list))
	for i := range list {
		out = append(out, *ToDTO(&list[i]))
	}
	return out, nil
}

// Resolve loads every photo of a report in display order. Missing bytes are
// recorded per photo and never fail the batch.
func (u *Usecase) Resolve(ctx context.Context, kind domainPhoto.Kind, reportID uint64) ([]Resolved, error) {
	return u.ResolveIn(ctx, u.photos, kind, reportID)
}

// ResolveIn is Resolve against a caller-supplied repository, typically one
// bound to an open transaction.
func (u *Usecase) ResolveIn(ctx context.Context, photos domainPhoto.Repository, kind domainPhoto.Kind, reportID uint64) ([]Resolved, error) {
	list, err := photos.ListByReport(ctx, kindOf(kind), reportID)
	if err != nil {
		return nil, err
	}
	out := make([]Resolved, 0, len(list))
	for i := range list {
		b, err := u.blob(&list[i])
		if err != nil {
			u.log.Warn("photo bytes unavailable", "photo_id", list[i].ID, "report_id", reportID, "err", err)
		}
		out = append(out, Resolved{Photo: list[i], Blob: b, Err: err})
	}
	return out, nil
}

// Delete removes the photo and closes the gap in the ordering.
func (u *Usecase) Delete(ctx context.Context, kind domainPhoto.Kind, id uint64) error {
	kind = kindOf(kind)
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Photos.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}
		if err := ensureEditable(ctx, r, kind, p.ReportID); err != nil {
			return err
		}
		if err := r.Photos.Delete(ctx, kind, id); err != nil {
			return err
		}
		return r.Photos.Compact(ctx, kind, p.ReportID)
	})
}

// Reorder sets the display order; ids must name every photo of the report.
func (u *Usecase) Reorder(ctx context.Context, kind domainPhoto.Kind, reportID uint64, ids []uint64) error {
	kind = kindOf(kind)
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := ensureEditable(ctx, r, kind, reportID); err != nil {
			return err
		}
		return r.Photos.Reorder(ctx, kind, reportID, ids)
	})
}

func (u *Usecase) UpdateCaption(ctx context.Context, kind domainPhoto.Kind, id uint64, caption, category, location string) (*PhotoDTO, error) {
	return u.mutate(ctx, kind, id, func(p *domainPhoto.Photo) error {
		p.Caption = caption
		p.Category = category
		p.Location = location
		return nil
	})
}

// SetAnnotations replaces the overlay drawn over the photo in the PDF.
func (u *Usecase) SetAnnotations(ctx context.Context, kind domainPhoto.Kind, id uint64, marks []domainPhoto.Annotation) (*PhotoDTO, error) {
	for i := range marks {
		if err := u.validate.Struct(marks[i]); err != nil {
			return nil, fmt.Errorf("%w: annotation %d: %v", ErrInvalidAnnotation, i, err)
		}
	}
	raw, err := json.Marshal(marks)
	if err != nil {
		return nil, err
	}
	return u.mutate(ctx, kind, id, func(p *domainPhoto.Photo) error {
		p.Annotations = datatypes.JSON(raw)
		return nil
	})
}

func (u *Usecase) mutate(ctx context.Context, kind domainPhoto.Kind, id uint64, fn func(p *domainPhoto.Photo) error) (*PhotoDTO, error) {
	kind = kindOf(kind)
	var dto *PhotoDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Photos.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}
		if err := ensureEditable(ctx, r, kind, p.ReportID); err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := r.Photos.Update(ctx, kind, p); err != nil {
			return err
		}
		dto = ToDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// ensureEditable claims the owning report row for the rest of the transaction
// and rejects photo changes once it is approved. A concurrent approval either
// waits for this transaction or wins and leaves zero rows to claim.
func ensureEditable(ctx context.Context, r uow.Repos, kind domainPhoto.Kind, reportID uint64) error {
	at := time.Now().UTC()
	if kind == domainPhoto.KindExpress {
		return r.Reports.GuardExpressEditable(ctx, reportID, at)
	}
	return r.Reports.GuardEditable(ctx, reportID, at)
}

func kindOf(k domainPhoto.Kind) domainPhoto.Kind {
	if k == domainPhoto.KindExpress {
		return k
	}
	return domainPhoto.KindReport
}

func storedName(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return filepath.Base(name)
}
