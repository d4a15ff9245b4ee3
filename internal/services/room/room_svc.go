package room

import (
	"errors"

	"chatroomgo/internal/registry"

	"go.uber.org/zap"
)

// RoomDTO is the public view of one room.
type RoomDTO struct {
	Code        string `json:"code"`
	MemberCount int    `json:"member_count"`
}

// Session binds a display name to a room code for one connection cycle.
// It is created by ValidateAndBind and threaded explicitly into the ws layer.
type Session struct {
	RoomCode    string `json:"room_code"`
	DisplayName string `json:"display_name"`
}

var (
	ErrMissingName  = errors.New("a display name is required")
	ErrMissingCode  = errors.New("a room code is required")
	ErrRoomNotFound = errors.New("room not found")
)

type IRoomService interface {
	ValidateAndBind(name, code string, wantsCreate bool) (*Session, error)
	RoomInfo(code string) (*RoomDTO, error)
	History(code string) []registry.Message
}

type roomService struct {
	reg        *registry.Registry
	codeLength int
	onCreate   func() // metrics hook, may be nil
}

func NewRoomService(reg *registry.Registry, codeLength int, onCreate func()) IRoomService {
	return &roomService{
		reg:        reg,
		codeLength: codeLength,
		onCreate:   onCreate,
	}
}

// ValidateAndBind is the room-selection entry point. On create it allocates a
// fresh code and inserts the room; on join it requires the room to exist.
// The returned Session is owned by the caller's connection and is never
// shared, even when two connections pick the same room and name.
func (svc *roomService) ValidateAndBind(name, code string, wantsCreate bool) (*Session, error) {
	if name == "" {
		return nil, ErrMissingName
	}

	if wantsCreate {
		for {
			code = GenerateCode(svc.reg, svc.codeLength)
			// Generation and insertion are separate steps, so a concurrent
			// create may beat us to the code; retry until the insert wins.
			if svc.reg.Create(code) {
				break
			}
		}
		zap.L().Info("room.created", zap.String("room", code))
		if svc.onCreate != nil {
			svc.onCreate()
		}
		return &Session{RoomCode: code, DisplayName: name}, nil
	}

	if code == "" {
		return nil, ErrMissingCode
	}
	if !svc.reg.Exists(code) {
		return nil, ErrRoomNotFound
	}
	return &Session{RoomCode: code, DisplayName: name}, nil
}

func (svc *roomService) RoomInfo(code string) (*RoomDTO, error) {
	info, ok := svc.reg.Snapshot(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &RoomDTO{Code: info.Code, MemberCount: info.MemberCount}, nil
}

// History returns the room's messages oldest first. An absent room yields an
// empty slice; stale codes are a normal, frequent outcome.
func (svc *roomService) History(code string) []registry.Message {
	msgs := svc.reg.History(code)
	if msgs == nil {
		return []registry.Message{}
	}
	return msgs
}
