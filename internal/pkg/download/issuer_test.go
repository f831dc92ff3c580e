package download

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/ashram-web/satsang-server/internal/pkg/entitlements"
)

type fakeChecker struct {
	decision entitlements.AccessDecision
	err      error
}

func (f *fakeChecker) CheckAccess(ctx context.Context, userID uint, slug, locale string, now time.Time) (entitlements.AccessDecision, error) {
	return f.decision, f.err
}

type fakeContentStore struct {
	item *models.ContentItem
	err  error
}

func (f *fakeContentStore) GetContent(slug, locale string) (*models.ContentItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

type fakeSigner struct {
	url   string
	err   error
	calls int
	key   string
	ttl   time.Duration
}

func (f *fakeSigner) SignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	f.calls++
	f.key = objectKey
	f.ttl = ttl
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func TestIssueDownload(t *testing.T) {
	checker := &fakeChecker{decision: entitlements.AccessDecision{Accessible: true, Reason: entitlements.ReasonEntitled}}
	store := &fakeContentStore{item: &models.ContentItem{Slug: "bhajan", ObjectKey: "audio/bhajan.mp3"}}
	signer := &fakeSigner{url: "https://bucket.example/audio/bhajan.mp3?sig=abc"}
	issuer := NewIssuerWithTTL(checker, store, signer, 5*time.Minute)

	now := time.Now()
	res, err := issuer.IssueDownload(context.Background(), 7, "bhajan", "hi", now)
	require.NoError(t, err)
	assert.True(t, res.Decision.Accessible)
	assert.Equal(t, signer.url, res.URL)
	assert.Equal(t, now.Add(5*time.Minute), res.ExpiresAt)
	assert.Equal(t, "audio/bhajan.mp3", signer.key)
	assert.Equal(t, 5*time.Minute, signer.ttl)
}

func TestIssueDownloadNeverSignsOnDeny(t *testing.T) {
	reasons := []entitlements.Reason{
		entitlements.ReasonNoActiveSubscription,
		entitlements.ReasonNotYetReleased,
		entitlements.ReasonPlanMismatch,
		entitlements.ReasonNotFound,
	}
	for _, reason := range reasons {
		checker := &fakeChecker{decision: entitlements.AccessDecision{Accessible: false, Reason: reason}}
		store := &fakeContentStore{item: &models.ContentItem{ObjectKey: "audio/bhajan.mp3"}}
		signer := &fakeSigner{url: "https://bucket.example/x"}
		issuer := NewIssuerWithTTL(checker, store, signer, 5*time.Minute)

		res, err := issuer.IssueDownload(context.Background(), 7, "bhajan", "hi", time.Now())
		require.NoError(t, err)
		assert.False(t, res.Decision.Accessible)
		assert.Equal(t, reason, res.Decision.Reason)
		assert.Empty(t, res.URL)
		assert.Zero(t, signer.calls)
	}
}

func TestIssueDownloadDegradesWhenContentVanishes(t *testing.T) {
	checker := &fakeChecker{decision: entitlements.AccessDecision{Accessible: true, Reason: entitlements.ReasonEntitled}}
	store := &fakeContentStore{err: gorm.ErrRecordNotFound}
	signer := &fakeSigner{}
	issuer := NewIssuerWithTTL(checker, store, signer, 5*time.Minute)

	res, err := issuer.IssueDownload(context.Background(), 7, "bhajan", "hi", time.Now())
	require.NoError(t, err)
	assert.False(t, res.Decision.Accessible)
	assert.Equal(t, entitlements.ReasonNotFound, res.Decision.Reason)
	assert.Zero(t, signer.calls)
}

func TestIssueDownloadPropagatesInfraErrors(t *testing.T) {
	infraErr := errors.New("store unreachable")

	issuer := NewIssuerWithTTL(&fakeChecker{err: infraErr}, &fakeContentStore{}, &fakeSigner{}, time.Minute)
	_, err := issuer.IssueDownload(context.Background(), 7, "bhajan", "hi", time.Now())
	assert.ErrorIs(t, err, infraErr)

	signErr := errors.New("signing backend down")
	checker := &fakeChecker{decision: entitlements.AccessDecision{Accessible: true, Reason: entitlements.ReasonEntitled}}
	store := &fakeContentStore{item: &models.ContentItem{ObjectKey: "audio/bhajan.mp3"}}
	issuer = NewIssuerWithTTL(checker, store, &fakeSigner{err: signErr}, time.Minute)
	_, err = issuer.IssueDownload(context.Background(), 7, "bhajan", "hi", time.Now())
	assert.ErrorIs(t, err, signErr)
}
