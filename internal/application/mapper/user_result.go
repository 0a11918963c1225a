package mapper

import (
	"github.com/ytuqete/cryptoPulse/internal/application/common"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
)

func NewUserResultFromEntity(user *entities.User) *common.UserResult {
	watchlist := make([]string, len(user.Watchlist))
	copy(watchlist, user.Watchlist)
	return &common.UserResult{
		Id:        user.Id,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		Email:     user.Email,
		Watchlist: watchlist,
	}
}
