package download

import (
	"context"
	"errors"
	"time"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/ashram-web/satsang-server/internal/pkg/entitlements"
	"github.com/ashram-web/satsang-server/internal/pkg/s3store"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Signer produces a time-bound URL for one stored object. The engine treats
// the signature as opaque and never constructs or validates it.
type Signer interface {
	SignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// AccessChecker is the slice of the entitlement resolver the issuer needs.
type AccessChecker interface {
	CheckAccess(ctx context.Context, userID uint, slug, locale string, now time.Time) (entitlements.AccessDecision, error)
}

// ContentStore resolves a content reference to its stored object key.
type ContentStore interface {
	GetContent(slug, locale string) (*models.ContentItem, error)
}

// Result carries either a signed reference or the deny decision, with the
// resolver's reason passed through verbatim so surfaces can tell "not yet
// released" from "requires upgrade".
type Result struct {
	Decision  entitlements.AccessDecision
	URL       string
	ExpiresAt time.Time
}

// Issuer converts positive entitlement decisions into short-lived download
// references.
type Issuer struct {
	checker AccessChecker
	store   ContentStore
	signer  Signer
	ttl     time.Duration
}

// NewIssuer creates an issuer with the configured link lifetime.
func NewIssuer(checker AccessChecker, store ContentStore, signer Signer) *Issuer {
	return &Issuer{checker: checker, store: store, signer: signer, ttl: s3store.DownloadURLTTL()}
}

// NewIssuerWithTTL creates an issuer with an explicit link lifetime.
func NewIssuerWithTTL(checker AccessChecker, store ContentStore, signer Signer, ttl time.Duration) *Issuer {
	return &Issuer{checker: checker, store: store, signer: signer, ttl: ttl}
}

// IssueDownload checks entitlement and, only on allow, requests a bounded
// signed reference from the object store. A deny is a normal outcome, not an
// error; errors mean infrastructure failure and are retryable.
func (i *Issuer) IssueDownload(ctx context.Context, userID uint, slug, locale string, now time.Time) (*Result, error) {
	decision, err := i.checker.CheckAccess(ctx, userID, slug, locale, now)
	if err != nil {
		return nil, err
	}
	if !decision.Accessible {
		return &Result{Decision: decision}, nil
	}

	content, err := i.store.GetContent(slug, locale)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Row vanished between check and issue; degrade like the resolver.
		return &Result{Decision: entitlements.AccessDecision{Reason: entitlements.ReasonNotFound}}, nil
	}
	if err != nil {
		return nil, err
	}

	url, err := i.signer.SignedURL(ctx, content.ObjectKey, i.ttl)
	if err != nil {
		log.Errorf("[Download] signing failed for %s: %v", content.ObjectKey, err)
		return nil, err
	}
	return &Result{Decision: decision, URL: url, ExpiresAt: now.Add(i.ttl)}, nil
}
