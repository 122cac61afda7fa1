package directory

import (
	"context"
	"testing"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeUsers() []repository.User {
	return []repository.User{
		{UniqueUserID: "u-3", DomainName: "PRIMARY", State: repository.StateUnlockedVerified},
		{UniqueUserID: "u-1", DomainName: "PRIMARY", State: repository.StateLockedUnverified},
		{UniqueUserID: "u-2", DomainName: "PRIMARY", State: repository.StateDisabledLocked},
	}
}

func TestGetFilteredListDefaultsAndUnfilteredPath(t *testing.T) {
	fs := newFakeStore()
	fs.users = threeUsers()

	entries, err := newTestService(fs).GetFilteredList(context.Background(), 0, -1, "", "", "")
	require.NoError(t, err)

	assert.Equal(t, 500, fs.lastLength)
	assert.Equal(t, "PRIMARY", fs.lastDomain)
	assert.Equal(t, 1, fs.called("ListUsers"))
	assert.Zero(t, fs.called("ListUsersByMetaClaim"))

	require.Len(t, entries, 3)
	assert.Equal(t, "u-3", entries[0].UserUniqueID)
	assert.Equal(t, "u-1", entries[1].UserUniqueID)
	assert.Equal(t, "u-2", entries[2].UserUniqueID)
}

func TestGetFilteredListBlankValueFallsBack(t *testing.T) {
	fs := newFakeStore()
	fs.users = threeUsers()

	filtered, err := newTestService(fs).GetFilteredList(context.Background(), 5, 20, "email", "", "SECONDARY")
	require.NoError(t, err)
	assert.Equal(t, 1, fs.called("ListUsers"))
	assert.Zero(t, fs.called("ListUsersByMetaClaim"))

	other := newFakeStore()
	other.users = threeUsers()
	plain, err := newTestService(other).GetUserList(context.Background(), 5, 20, "SECONDARY")
	require.NoError(t, err)

	assert.Equal(t, plain, filtered)
	assert.Equal(t, other.lastOffset, fs.lastOffset)
	assert.Equal(t, other.lastLength, fs.lastLength)
	assert.Equal(t, other.lastDomain, fs.lastDomain)
}

func TestGetFilteredListFilteredPath(t *testing.T) {
	fs := newFakeStore()
	fs.users = threeUsers()[:1]

	entries, err := newTestService(fs).GetFilteredList(context.Background(), 0, 10, "http://wso2.org/claims/email", "a*", "")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, 1, fs.called("ListUsersByMetaClaim"))
	assert.Equal(t, "http://wso2.org/claims/email", fs.lastMeta.ClaimURI)
	assert.Equal(t, "a*", fs.lastFilter)
	assert.Equal(t, "PRIMARY", fs.lastDomain)
	assert.Equal(t, 10, fs.lastLength)
}

func TestListingPageBounds(t *testing.T) {
	cases := []struct {
		offset, length         int
		wantOffset, wantLength int
	}{
		{0, -1, 0, 500},
		{0, 0, 0, 500},
		{-3, 10, 0, 10},
		{7, 501, 7, 500},
		{7, 500, 7, 500},
	}
	for _, c := range cases {
		o, l := PageBounds(c.offset, c.length)
		if o != c.wantOffset || l != c.wantLength {
			t.Fatalf("PageBounds(%d,%d) = (%d,%d), want (%d,%d)", c.offset, c.length, o, l, c.wantOffset, c.wantLength)
		}
	}
}

func TestGetUserListPrimaryDomainFailure(t *testing.T) {
	fs := newFakeStore()
	fs.primaryErr = errStoreDown

	_, err := newTestService(fs).GetUserList(context.Background(), 0, 10, "")
	require.Error(t, err)
	assert.Equal(t, MsgPrimaryDomainFailed, err.Error())
	assert.Zero(t, fs.called("ListUsers"))
}

func TestGetUserListStoreFailure(t *testing.T) {
	fs := newFakeStore()
	fs.listErr = errStoreDown

	_, err := newTestService(fs).GetUserList(context.Background(), 0, 10, "PRIMARY")
	require.Error(t, err)
	assert.Equal(t, MsgRetrieveUsersFailed, err.Error())
	assert.NotContains(t, err.Error(), "refused")
}

func TestListUsersReturnsIdentityProjections(t *testing.T) {
	fs := newFakeStore()
	fs.users = threeUsers()

	users, err := newTestService(fs).ListUsers(context.Background(), "http://wso2.org/claims/email", "a@b.com", 0, -5, "")
	require.NoError(t, err)
	require.Len(t, users, 3)
	for i, u := range users {
		assert.Empty(t, u.Username)
		assert.Equal(t, fs.users[i].UniqueUserID, u.UserID)
	}
	assert.Equal(t, "a@b.com", fs.lastListClaim.Value)
	assert.Equal(t, 500, fs.lastLength)
	assert.Equal(t, "PRIMARY", fs.lastDomain)
	assert.Zero(t, fs.called("GetGroupsOfUser"))
}
