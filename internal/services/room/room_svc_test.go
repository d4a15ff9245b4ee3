package room

import (
	"regexp"
	"testing"

	"chatroomgo/internal/registry"

	"github.com/stretchr/testify/require"
)

func TestGenerateCodeLengthAndAlphabet(t *testing.T) {
	reg := registry.New()
	pattern := regexp.MustCompile(`^[A-Z]+$`)

	for _, length := range []int{1, 2, 4, 8, 16} {
		code := GenerateCode(reg, length)
		require.Len(t, code, length)
		require.Regexp(t, pattern, code)
	}
}

func TestGenerateCodeSkipsLiveCodes(t *testing.T) {
	reg := registry.New()

	// Occupy every single-letter code except "Q"; generation must re-roll
	// until it lands on the only free one.
	for _, c := range codeAlphabet {
		if c != 'Q' {
			reg.Create(string(c))
		}
	}

	for range 50 {
		require.Equal(t, "Q", GenerateCode(reg, 1))
	}
}

func TestValidateAndBindCreate(t *testing.T) {
	reg := registry.New()
	created := 0
	svc := NewRoomService(reg, 4, func() { created++ })

	sess, err := svc.ValidateAndBind("alice", "", true)
	require.NoError(t, err)
	require.Equal(t, "alice", sess.DisplayName)
	require.Len(t, sess.RoomCode, 4)
	require.True(t, reg.Exists(sess.RoomCode))
	require.Equal(t, 1, created)

	info, ok := reg.Snapshot(sess.RoomCode)
	require.True(t, ok)
	require.Equal(t, 0, info.MemberCount)
	require.Empty(t, reg.History(sess.RoomCode))
}

func TestValidateAndBindJoin(t *testing.T) {
	reg := registry.New()
	svc := NewRoomService(reg, 4, nil)

	sess, err := svc.ValidateAndBind("alice", "", true)
	require.NoError(t, err)

	// A second client joins by code; sessions are per-connection values.
	joined, err := svc.ValidateAndBind("bob", sess.RoomCode, false)
	require.NoError(t, err)
	require.Equal(t, sess.RoomCode, joined.RoomCode)
	require.Equal(t, "bob", joined.DisplayName)
	require.NotSame(t, sess, joined)
}

func TestValidateAndBindErrors(t *testing.T) {
	reg := registry.New()
	svc := NewRoomService(reg, 4, nil)

	_, err := svc.ValidateAndBind("", "ABCD", false)
	require.ErrorIs(t, err, ErrMissingName)

	_, err = svc.ValidateAndBind("", "", true)
	require.ErrorIs(t, err, ErrMissingName)

	_, err = svc.ValidateAndBind("alice", "", false)
	require.ErrorIs(t, err, ErrMissingCode)

	_, err = svc.ValidateAndBind("alice", "NOPE", false)
	require.ErrorIs(t, err, ErrRoomNotFound)

	require.Equal(t, 0, reg.Len(), "failed binds must not create rooms")
}

func TestRoomInfo(t *testing.T) {
	reg := registry.New()
	svc := NewRoomService(reg, 4, nil)

	sess, err := svc.ValidateAndBind("alice", "", true)
	require.NoError(t, err)

	dto, err := svc.RoomInfo(sess.RoomCode)
	require.NoError(t, err)
	require.Equal(t, sess.RoomCode, dto.Code)
	require.Equal(t, 0, dto.MemberCount)

	_, err = svc.RoomInfo("NOPE")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestHistoryForAbsentRoomIsEmpty(t *testing.T) {
	svc := NewRoomService(registry.New(), 4, nil)

	msgs := svc.History("NOPE")
	require.NotNil(t, msgs)
	require.Empty(t, msgs)
}
