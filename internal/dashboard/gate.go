package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/session"
)

// gate implements last-request-wins for one dashboard instance. Each refresh
// takes a token; a response is applied only while its token is the newest one
// and the session still belongs to the login the dashboard was opened for.
type gate struct {
	sess  *session.Session
	epoch uint64

	mu  sync.Mutex
	seq uint64
}

func newGate(sess *session.Session) *gate {
	return &gate{sess: sess, epoch: sess.Epoch()}
}

func (g *gate) begin() uint64 {
	return g.beginWith(func() {})
}

// beginWith takes a token and runs fn under the gate lock, so whatever fn
// records belongs to that token and no later one. fn may take the dashboard
// lock; apply nests the two locks in the same order.
func (g *gate) beginWith(fn func()) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	fn()
	return g.seq
}

// apply runs fn only if token is still current. It reports whether fn ran.
func (g *gate) apply(token uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token != g.seq || g.sess.Epoch() != g.epoch {
		return false
	}
	fn()
	return true
}

func (g *gate) alive() error {
	if g.sess.Epoch() != g.epoch {
		return fmt.Errorf("dashboard session ended: %w", domain.ErrInvalidTransition)
	}
	return nil
}

// opened returns the identity a dashboard is opened for, or an error when the
// session is not in the wanted state.
func opened(sess *session.Session, want session.State) (domain.Identity, error) {
	if got := sess.State(); got != want {
		return domain.Identity{}, fmt.Errorf("open %s dashboard in state %s: %w", want, got, domain.ErrInvalidTransition)
	}
	id, _ := sess.Identity()
	return id, nil
}

// NoticeKind classifies a banner message.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeInfo
	NoticeError
)

// Notice is the banner a dashboard shows after an action or a failed request.
type Notice struct {
	Kind    NoticeKind
	Message string
}

type notices struct {
	logger *log.Logger

	mu      sync.Mutex
	current Notice
}

func newNotices(logger *log.Logger) *notices {
	if logger == nil {
		logger = log.Default()
	}
	return &notices{logger: logger}
}

func (n *notices) get() Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *notices) set(notice Notice) {
	n.mu.Lock()
	n.current = notice
	n.mu.Unlock()
}

func (n *notices) info(message string) {
	n.set(Notice{Kind: NoticeInfo, Message: message})
}

// fail records a notice for err and returns err wrapped with op.
func (n *notices) fail(op string, err error) error {
	n.set(noticeFor(op, err))
	if !errors.Is(err, domain.ErrValidation) {
		n.logger.Printf("dashboard: %s failed: %v", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func noticeFor(op string, err error) Notice {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return Notice{Kind: NoticeError, Message: verr.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return Notice{Kind: NoticeError, Message: fmt.Sprintf("Failed to %s: not found", op)}
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
		return Notice{Kind: NoticeError, Message: fmt.Sprintf("Failed to %s: not allowed", op)}
	case errors.Is(err, domain.ErrConflict):
		return Notice{Kind: NoticeError, Message: fmt.Sprintf("Failed to %s: already exists", op)}
	default:
		return Notice{Kind: NoticeError, Message: fmt.Sprintf("Failed to %s. Backend might be down.", op)}
	}
}

// changePassword is shared by every dashboard's password form. An abandoned
// form is a silent no-op.
func changePassword(ctx context.Context, c Client, g *gate, n *notices, userID string, in domain.PasswordChange) error {
	if err := g.alive(); err != nil {
		return err
	}
	if in.Cancelled() {
		return nil
	}
	in.UserID = userID
	if err := in.Validate(); err != nil {
		return n.fail("update password", err)
	}
	if err := c.UpdatePassword(ctx, in); err != nil {
		return n.fail("update password", err)
	}
	n.info("Password updated successfully!")
	return nil
}
