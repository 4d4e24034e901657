package service

import (
	"context"
	"testing"

	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/pkg/sanitize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(f *fixture) IProfileService {
	return NewProfileService(f.store, f.ledger, sanitize.NewTextSanitizer(), testCredits.EmailVerifiedReward)
}

func TestProfileService_WritingStyles(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 0, false)
	svc := newProfileService(f)
	ctx := context.Background()
	sess := userSession("naver:1")

	res, err := svc.SaveWritingStyles(ctx, sess, dto.SaveWritingStylesRequest{Styles: []dto.WritingStyleDTO{
		{Id: "a", Title: "<b>담백</b>", SampleText: "오늘은<script>x</script> 담백하게."},
		{Id: "a", Title: "경쾌", SampleText: "신나게!"},
	}})
	require.NoError(t, err)
	require.Len(t, res.WritingStyles, 2)
	assert.Equal(t, "담백", res.WritingStyles[0].Title)
	assert.NotContains(t, res.WritingStyles[0].SampleText, "script")
	assert.NotEqual(t, "a", res.WritingStyles[1].Id)

	res, err = svc.SetActiveWritingStyle(ctx, sess, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", res.ActiveWritingStyle)

	_, err = svc.SetActiveWritingStyle(ctx, sess, "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	// dropping the active style clears it
	res, err = svc.SaveWritingStyles(ctx, sess, dto.SaveWritingStylesRequest{Styles: []dto.WritingStyleDTO{{Id: "b", Title: "새", SampleText: "새 문체"}}})
	require.NoError(t, err)
	assert.Empty(t, res.ActiveWritingStyle)
}

func TestProfileService_EmailReward(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 1, false)
	svc := newProfileService(f)
	ctx := context.Background()

	unverified := userSession("naver:1")
	unverified.EmailVerified = false
	_, err := svc.ClaimEmailVerifiedReward(ctx, unverified)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	res, err := svc.ClaimEmailVerifiedReward(ctx, userSession("naver:1"))
	require.NoError(t, err)
	assert.True(t, res.Granted)
	assert.Equal(t, 3, res.Balance)

	res, err = svc.ClaimEmailVerifiedReward(ctx, userSession("naver:1"))
	require.NoError(t, err)
	assert.False(t, res.Granted)
	assert.Equal(t, 3, res.Balance)

	history, err := svc.CreditHistory(ctx, userSession("naver:1"), 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
