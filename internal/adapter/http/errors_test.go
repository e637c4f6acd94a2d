package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	domainApproval "site-report-backend/internal/domain/approval"
	domainPhoto "site-report-backend/internal/domain/photo"
	domainReport "site-report-backend/internal/domain/report"
	"site-report-backend/internal/infrastructure/pdf"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domainReport.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", domainPhoto.ErrNotFound), http.StatusNotFound},
		{domainPhoto.ErrPhotoMissing, http.StatusGone},
		{domainApproval.ErrNotApprover, http.StatusForbidden},
		{domainReport.ErrNotAuthor, http.StatusForbidden},
		{domainReport.ErrFrozen, http.StatusConflict},
		{fmt.Errorf("%w: project 1 after 5 attempts", domainReport.ErrNumberingContention), http.StatusConflict},
		{domainPhoto.ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
		{domainPhoto.ErrPhotoTooLarge, http.StatusRequestEntityTooLarge},
		{domainReport.ErrMissingFields, http.StatusUnprocessableEntity},
		{pdf.ErrTemplateMissing, http.StatusServiceUnavailable},
		{errMissingActor, http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
