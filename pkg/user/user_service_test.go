package user

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"foodgram-backend/domain"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/internal/utils/testdb"
	"foodgram-backend/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSubscriptions map[uint]bool

func (s stubSubscriptions) SubscribedAuthorIDs(_ context.Context, _ uint, authorIDs []uint) (map[uint]bool, error) {
	out := map[uint]bool{}
	for _, id := range authorIDs {
		if s[id] {
			out[id] = true
		}
	}
	return out, nil
}

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	sent []sentMail
}

func (m *recordingMailer) SendMail(toEmail, subject, body string) error {
	m.sent = append(m.sent, sentMail{toEmail, subject, body})
	return nil
}

type fixture struct {
	svc    UserService
	repo   UserRepository
	jwt    jwt.JWTService
	mailer *recordingMailer
	subs   stubSubscriptions
}

func newFixture(t *testing.T) *fixture {
	db := testdb.New(t)
	f := &fixture{
		repo:   NewUserRepository(db),
		jwt:    jwt.NewJWTServiceWithSecret("test-secret", time.Hour),
		mailer: &recordingMailer{},
		subs:   stubSubscriptions{},
	}
	f.svc = NewUserService(f.repo, f.subs, f.jwt, storage.NewLocalStorage(t.TempDir(), "/media"), f.mailer, "http://foodgram.test/")
	return f
}

func (f *fixture) register(t *testing.T, username string) domain.RegisterResponse {
	t.Helper()
	res, err := f.svc.Register(context.Background(), domain.RegisterRequest{
		Email:     username + "@example.org",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.register(t, "chef")
	assert.NotZero(t, created.ID)
	assert.Equal(t, "chef@example.org", created.Email)

	res, err := f.svc.Login(ctx, domain.LoginRequest{Email: "chef@example.org", Password: "s3cret-pass"})
	require.NoError(t, err)

	id, err := f.jwt.GetUserIDByToken(res.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	_, err = f.svc.Login(ctx, domain.LoginRequest{Email: "chef@example.org", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.org", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "chef")

	_, err := f.svc.Register(ctx, domain.RegisterRequest{
		Email: "chef@example.org", Username: "other", FirstName: "a", LastName: "b", Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = f.svc.Register(ctx, domain.RegisterRequest{
		Email: "other@example.org", Username: "chef", FirstName: "a", LastName: "b", Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameAlreadyExists)
}

func TestGetUsersMarksSubscriptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.register(t, "viewer")
	followed := f.register(t, "followed")
	f.register(t, "stranger")
	f.subs[followed.ID] = true

	users, count, err := f.svc.GetUsers(ctx, domain.PaginationRequest{Page: 1, Limit: 2}, viewer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	require.Len(t, users, 2)
	assert.False(t, users[0].IsSubscribed)
	assert.True(t, users[1].IsSubscribed)

	// anonymous viewers see no subscriptions
	one, err := f.svc.GetUserByID(ctx, followed.ID, 0)
	require.NoError(t, err)
	assert.False(t, one.IsSubscribed)

	_, err = f.svc.GetUserByID(ctx, 999, viewer.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "chef")

	err := f.svc.SetPassword(ctx, u.ID, domain.SetPasswordRequest{CurrentPassword: "not-it", NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, domain.ErrWrongPassword)

	require.NoError(t, f.svc.SetPassword(ctx, u.ID, domain.SetPasswordRequest{CurrentPassword: "s3cret-pass", NewPassword: "brand-new-pass"}))

	_, err = f.svc.Login(ctx, domain.LoginRequest{Email: u.Email, Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, domain.LoginRequest{Email: u.Email, Password: "brand-new-pass"})
	assert.NoError(t, err)
}

func TestPasswordResetRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "chef")

	// unknown email is silently accepted
	require.NoError(t, f.svc.ForgotPassword(ctx, domain.ResetPasswordRequest{Email: "ghost@example.org"}))
	assert.Empty(t, f.mailer.sent)

	require.NoError(t, f.svc.ForgotPassword(ctx, domain.ResetPasswordRequest{Email: u.Email}))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, u.Email, f.mailer.sent[0].to)

	token, err := f.jwt.GenerateTokenForgetPassword(map[string]any{}, time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, domain.ResetPasswordConfirmRequest{Token: token, NewPassword: "reset-pass-1"}), domain.ErrResetTokenInvalid)

	mailed := tokenFromMail(t, f.mailer.sent[0].body)
	require.NoError(t, f.svc.ResetPassword(ctx, domain.ResetPasswordConfirmRequest{Token: mailed, NewPassword: "reset-pass-1"}))

	_, err = f.svc.Login(ctx, domain.LoginRequest{Email: u.Email, Password: "reset-pass-1"})
	assert.NoError(t, err)

	// the same token cannot be replayed once the password changed
	err = f.svc.ResetPassword(ctx, domain.ResetPasswordConfirmRequest{Token: mailed, NewPassword: "reset-pass-2"})
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func tokenFromMail(t *testing.T, body string) string {
	t.Helper()
	_, rest, found := strings.Cut(body, "token=")
	require.True(t, found)
	token, _, found := strings.Cut(rest, "\"")
	require.True(t, found)
	return token
}

func TestAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "chef")

	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(png))

	res, err := f.svc.UpdateAvatar(ctx, u.ID, domain.AvatarRequest{Avatar: uri})
	require.NoError(t, err)
	require.NotNil(t, res.Avatar)
	assert.True(t, strings.HasPrefix(*res.Avatar, "/media/users/avatars/"))

	me, err := f.svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Avatar, me.Avatar)

	require.NoError(t, f.svc.DeleteAvatar(ctx, u.ID))
	me, err = f.svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, me.Avatar)

	_, err = f.svc.UpdateAvatar(ctx, u.ID, domain.AvatarRequest{Avatar: "data:image/png;base64,aGVsbG8="})
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}
