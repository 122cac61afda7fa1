package directory

import (
	"context"
	"fmt"
	"testing"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateUserProfileEmptyIsNoop(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)

	require.NoError(t, svc.UpdateUserProfile(context.Background(), "u-1", nil))
	require.NoError(t, svc.UpdateUserProfile(context.Background(), "u-1", map[string]string{}))
	assert.Empty(t, fs.calls)
}

func TestUpdateUserProfileDropsBlankKeys(t *testing.T) {
	fs := newFakeStore()

	err := newTestService(fs).UpdateUserProfile(context.Background(), "u-1",
		map[string]string{"http://wso2.org/claims/lastName": "Doe", "": "ignored", "  ": "ignored"})
	require.NoError(t, err)
	require.Len(t, fs.lastClaims, 1)
	assert.Equal(t, repository.Claim{
		DialectURI: DefaultDialectURI,
		ClaimURI:   "http://wso2.org/claims/lastName",
		Value:      "Doe",
	}, fs.lastClaims[0])
}

func TestUpdateUserProfileNotFound(t *testing.T) {
	fs := newFakeStore()
	fs.updateErr = fmt.Errorf("lookup: %w", repository.ErrUserNotFound)

	err := newTestService(fs).UpdateUserProfile(context.Background(), "ghost", map[string]string{"a": "b"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestGetClaimsOfUserShortCircuits(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)

	claims, err := svc.GetClaimsOfUser(context.Background(), "u-1", nil)
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Empty(t, claims)

	_, err = svc.GetClaimsOfUser(context.Background(), "  ", []string{"x"})
	require.Error(t, err)
	assert.Equal(t, MsgInvalidUserID, err.Error())
	assert.True(t, IsKind(err, KindClientUsage))

	assert.Empty(t, fs.calls)
}

func TestGetClaimsOfUser(t *testing.T) {
	fs := newFakeStore()
	fs.userClaims["u-1"] = []repository.Claim{{ClaimURI: "email", Value: "a@b.com"}}

	claims, err := newTestService(fs).GetClaimsOfUser(context.Background(), "u-1", []string{"email"})
	require.NoError(t, err)
	assert.Equal(t, fs.userClaims["u-1"], claims)

	fs.userClaimsErr = errStoreDown
	_, err = newTestService(fs).GetClaimsOfUser(context.Background(), "u-1", []string{"email"})
	require.Error(t, err)
	assert.Equal(t, MsgGetClaimsFailed, err.Error())
}

func TestDomainResolver(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)

	names, err := svc.GetDomainNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"PRIMARY", "SECONDARY"}, names)

	primary, err := svc.GetPrimaryDomainName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PRIMARY", primary)

	fs.primaryErr = errStoreDown
	_, err = svc.GetDomainNames(context.Background())
	assert.Equal(t, MsgDomainNamesFailed, err.Error())
	_, err = svc.GetPrimaryDomainName(context.Background())
	assert.Equal(t, MsgPrimaryDomainFailed, err.Error())
}
