package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/internal/export"
	"go-applicant-tracker/pkg/logger"
)

// ErrValidation marks a failure caught before any request was sent
var ErrValidation = errors.New("validation failed")

// Store is the applicant store as the dashboard sees it. *client.Client
// satisfies it.
type Store interface {
	List(ctx context.Context, search string) ([]domain.Applicant, error)
	Create(ctx context.Context, req domain.CreateApplicantRequest) (*domain.Applicant, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	Clear(ctx context.Context) (int64, error)
	UploadResume(ctx context.Context, filename, desiredName string, data []byte) (*domain.Resume, error)
	DeleteResume(ctx context.Context, path string) error
	AddComment(ctx context.Context, applicantID string, req domain.AddCommentRequest) (*domain.Comment, error)
	ResumeURL(path string, download bool) string
}

// Controller runs one user action at a time against the store. A failed
// action leaves the state as it was, apart from the notice it raises.
type Controller struct {
	mu    sync.Mutex
	store Store
	state State
	now   func() time.Time
}

func NewController(store Store) *Controller {
	return &Controller{
		store: store,
		state: NewState(),
		now:   time.Now,
	}
}

// State returns a snapshot of the dashboard
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies a local action and returns the new state
func (c *Controller) Dispatch(a Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
	return c.state
}

// Detail returns the view of the selected applicant
func (c *Controller) Detail() (Detail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DetailOf(c.state, c.store)
}

// Refresh re-fetches the full applicant list
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh(ctx)
}

// Submit sends the add-applicant form. A resume, when attached, is
// uploaded first; the applicant is only created once that succeeded, and
// the upload is removed again if the create fails. Once the applicant is
// saved the form is cleared even if the list cannot be reloaded.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	form := c.state.Form
	if n := ValidateForm(form); n != nil {
		c.notify(*n)
		return fmt.Errorf("%w: %s", ErrValidation, n.Text)
	}

	var resume *domain.Resume
	if form.Resume != nil {
		desired := ResumeFileName(form.FullName, c.now())
		uploaded, err := c.store.UploadResume(ctx, form.Resume.Name, desired, form.Resume.Data)
		if err != nil {
			return c.fail(MsgUploadFailed, "upload resume", err)
		}
		resume = uploaded
	}

	if _, err := c.store.Create(ctx, CreateRequest(form, resume)); err != nil {
		if resume != nil {
			if derr := c.store.DeleteResume(ctx, resume.Path); derr != nil {
				logger.Log.Warn("Orphaned resume after failed create", "path", resume.Path, "error", derr)
			}
		}
		return c.fail(MsgSaveFailed, "create applicant", err)
	}

	c.state = Reduce(c.state, ResetForm{})
	applicants, err := c.store.List(ctx, "")
	if err != nil {
		logger.Log.Error("Dashboard action failed", "op", "list applicants", "error", err)
		c.notify(Notice{Kind: NoticeError, Text: MsgAddedNotRefreshed})
		return nil
	}
	c.state = Reduce(c.state, Loaded{Applicants: applicants})
	c.notify(Notice{Kind: NoticeInfo, Text: MsgApplicantAdded})
	return nil
}

func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, id); err != nil {
		return c.fail(MsgDeleteFailed, "delete applicant", err)
	}
	return c.refresh(ctx)
}

// DeleteMany removes several applicants in one request
func (c *Controller) DeleteMany(ctx context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	if _, err := c.store.DeleteMany(ctx, ids); err != nil {
		return c.fail(MsgDeleteFailed, "delete applicants", err)
	}
	return c.refresh(ctx)
}

func (c *Controller) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.store.Clear(ctx); err != nil {
		return c.fail(MsgClearFailed, "clear applicants", err)
	}
	return c.refresh(ctx)
}

// AddComment records a decision on the selected applicant. The stored
// comment is appended to the local history; the detail view derives the
// one-per-reviewer list from it.
func (c *Controller) AddComment(ctx context.Context, req domain.AddCommentRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := ValidateComment(req); n != nil {
		c.notify(*n)
		return fmt.Errorf("%w: %s", ErrValidation, n.Text)
	}
	selected, ok := c.state.Selected()
	if !ok {
		return fmt.Errorf("%w: no applicant selected", ErrValidation)
	}

	req.Note = strings.TrimSpace(req.Note)
	comment, err := c.store.AddComment(ctx, selected.ID, req)
	if err != nil {
		return c.fail(MsgCommentFailed, "add comment", err)
	}
	if comment.ApplicantID == "" {
		comment.ApplicantID = selected.ID
	}
	c.state = Reduce(c.state, CommentAdded{Comment: *comment})
	return nil
}

// ExportCSV renders every loaded applicant as CSV. ok is false, with a
// notice raised, when there is nothing to export.
func (c *Controller) ExportCSV() (data []byte, filename string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, c.state.Applicants); err != nil {
		if errors.Is(err, export.ErrNoApplicants) {
			c.notify(Notice{Kind: NoticeInfo, Text: MsgNoExport})
		} else {
			c.notify(Notice{Kind: NoticeError, Text: err.Error()})
		}
		return nil, "", false
	}
	return buf.Bytes(), export.Filename(domain.ExportCSV, c.now()), true
}

// refresh must be called with mu held
func (c *Controller) refresh(ctx context.Context) error {
	applicants, err := c.store.List(ctx, "")
	if err != nil {
		return c.fail(MsgLoadFailed, "list applicants", err)
	}
	c.state = Reduce(c.state, Loaded{Applicants: applicants})
	return nil
}

func (c *Controller) notify(n Notice) {
	c.state = Reduce(c.state, ShowNotice{Notice: n})
}

func (c *Controller) fail(text, op string, err error) error {
	logger.Log.Error("Dashboard action failed", "op", op, "error", err)
	c.notify(Notice{Kind: NoticeError, Text: text})
	return fmt.Errorf("%s: %w", op, err)
}
