package contracts

import "context"

type VideoRoomService interface {
	CreateRoom(ctx context.Context, name string) (string, error)
}
