package directory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedCtx() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.ToContext(context.Background(), zap.New(core)), logs
}

func newTestService(fs *fakeStore) Service {
	if fs == nil {
		return NewService(Deps{Stores: staticProvider{}})
	}
	return NewService(Deps{Stores: staticProvider{s: fs}})
}

func TestAuthenticateReattachesUsername(t *testing.T) {
	fs := newFakeStore()
	fs.authCtx = &repository.AuthenticationContext{
		Authenticated: true,
		User:          &repository.User{UniqueUserID: "u-1", DomainName: "PRIMARY"},
	}
	svc := newTestService(fs)

	u, err := svc.Authenticate(context.Background(), "bob", "secret", "PRIMARY")
	require.NoError(t, err)
	assert.Equal(t, &User{Username: "bob", UserID: "u-1", DomainName: "PRIMARY"}, u)

	require.Len(t, fs.lastClaims, 1)
	assert.Equal(t, DefaultUsernameClaimURI, fs.lastClaims[0].ClaimURI)
	assert.Equal(t, "bob", fs.lastClaims[0].Value)
	require.Len(t, fs.lastCreds, 1)
	assert.Equal(t, repository.CredentialPassword, fs.lastCreds[0].Type)
	assert.Equal(t, "secret", string(fs.lastCreds[0].Secret))
}

func TestAuthenticateWrongPasswordAndOutageLookTheSame(t *testing.T) {
	wrong := newFakeStore()
	wrong.authErr = fmt.Errorf("password mismatch: %w", repository.ErrAuthenticationFailure)
	down := newFakeStore()
	down.authErr = errStoreDown

	ctx1, logs1 := observedCtx()
	_, err1 := newTestService(wrong).Authenticate(ctx1, "bob", "wrong", "PRIMARY")
	ctx2, logs2 := observedCtx()
	_, err2 := newTestService(down).Authenticate(ctx2, "bob", "right", "PRIMARY")

	require.Error(t, err1)
	require.Error(t, err2)
	assert.Equal(t, "Invalid credentials.", err1.Error())
	assert.Equal(t, "Invalid credentials.", err2.Error())

	require.Equal(t, 1, logs1.Len())
	assert.Equal(t, zapcore.DebugLevel, logs1.All()[0].Level)
	assert.Zero(t, logs1.FilterLevelExact(zapcore.ErrorLevel).Len())

	errs := logs2.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].ContextMap()["error"], "connection refused")
	assert.NotContains(t, err2.Error(), "connection refused")
}

func TestAuthenticateNotAuthenticatedWithoutError(t *testing.T) {
	fs := newFakeStore()
	fs.authCtx = &repository.AuthenticationContext{Authenticated: false}

	_, err := newTestService(fs).Authenticate(context.Background(), "bob", "x", "")
	require.Error(t, err)
	assert.Equal(t, MsgInvalidCredentials, err.Error())
}

func TestAuthenticateUnboundStore(t *testing.T) {
	ctx, logs := observedCtx()
	_, err := newTestService(nil).Authenticate(ctx, "bob", "x", "PRIMARY")
	require.Error(t, err)
	assert.Equal(t, MsgInvalidCredentials, err.Error())
	assert.True(t, IsKind(err, KindInfrastructure))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestUpdatePasswordGateBlocksMutation(t *testing.T) {
	fs := newFakeStore()
	fs.authErr = repository.ErrAuthenticationFailure

	err := newTestService(fs).UpdatePassword(context.Background(), "bob", "wrong", "new", "PRIMARY")
	require.Error(t, err)
	assert.Equal(t, MsgInvalidCredentials, err.Error())
	assert.Equal(t, 1, fs.called("Authenticate"))
	assert.Zero(t, fs.called("UpdateUserCredentials"))
}

func TestUpdatePasswordSubmitsNewCredential(t *testing.T) {
	fs := newFakeStore()
	fs.authCtx = &repository.AuthenticationContext{
		Authenticated: true,
		User:          &repository.User{UniqueUserID: "u-1", DomainName: "PRIMARY"},
	}

	err := newTestService(fs).UpdatePassword(context.Background(), "bob", "old", "new", "PRIMARY")
	require.NoError(t, err)
	assert.Equal(t, 1, fs.called("UpdateUserCredentials"))
	require.Len(t, fs.lastCreds, 1)
	assert.Equal(t, "new", string(fs.lastCreds[0].Secret))
}

func TestUpdatePasswordStoreFailureIsOpaque(t *testing.T) {
	fs := newFakeStore()
	fs.authCtx = &repository.AuthenticationContext{
		Authenticated: true,
		User:          &repository.User{UniqueUserID: "u-1", DomainName: "PRIMARY"},
	}
	fs.updateCredsErr = errStoreDown

	err := newTestService(fs).UpdatePassword(context.Background(), "bob", "old", "new", "PRIMARY")
	require.Error(t, err)
	assert.Equal(t, MsgUpdatePasswordFailed, err.Error())
	assert.True(t, IsKind(err, KindInfrastructure))
}

// serialStore autentica siempre al mismo usuario y mide cuántos cambios de
// credencial corren a la vez.
type serialStore struct {
	*fakeStore
	mu      sync.Mutex
	inside  int
	maxSeen int
	updates int
}

func (s *serialStore) Authenticate(context.Context, repository.Claim, []repository.Credential, string) (*repository.AuthenticationContext, error) {
	return &repository.AuthenticationContext{
		Authenticated: true,
		User:          &repository.User{UniqueUserID: "u-1", DomainName: "PRIMARY"},
	}, nil
}

func (s *serialStore) UpdateUserCredentials(context.Context, string, []repository.Credential) error {
	s.mu.Lock()
	s.inside++
	s.updates++
	if s.inside > s.maxSeen {
		s.maxSeen = s.inside
	}
	s.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	s.mu.Lock()
	s.inside--
	s.mu.Unlock()
	return nil
}

func TestUpdatePasswordSerializesBlankAndExplicitDomain(t *testing.T) {
	ss := &serialStore{fakeStore: newFakeStore()}
	svc := NewService(Deps{Stores: staticProvider{s: ss}})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		domain := ""
		if i%2 == 0 {
			domain = "PRIMARY"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.UpdatePassword(context.Background(), "bob", "old", "new", domain))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ss.updates)
	assert.Equal(t, 1, ss.maxSeen)
}
